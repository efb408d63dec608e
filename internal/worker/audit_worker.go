// Package worker consumes subscription change events and writes an audit
// trail with running counters.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"subtrack/internal/amqp"
	"subtrack/internal/log"
	"subtrack/internal/store"
)

// AuditWorker processes subscription events from the queue. For creates
// and updates it enriches the audit record with the current subscription
// state; deletes are logged from the event alone.
type AuditWorker struct {
	store  store.Store
	logger *log.Logger

	created int64
	updated int64
	deleted int64
	skipped int64
}

func NewAuditWorker(st store.Store, logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &AuditWorker{
		store:  st,
		logger: logger,
	}
}

// HandleEvent processes a single subscription event. It returns an error
// only for transient failures worth a redelivery; events referencing
// state that no longer exists are logged and acknowledged.
func (w *AuditWorker) HandleEvent(ctx context.Context, evt *amqp.SubscriptionEvent) error {
	switch evt.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		return w.auditChange(ctx, evt)
	case amqp.ActionDeleted:
		atomic.AddInt64(&w.deleted, 1)
		w.logger.InfoContext(ctx, "Subscription deleted",
			log.FieldSubscription, evt.ID,
			log.FieldAction, evt.Action,
			"timestamp", evt.Timestamp)
		return nil
	default:
		atomic.AddInt64(&w.skipped, 1)
		w.logger.WarnContext(ctx, "Skipping event with unknown action",
			log.FieldSubscription, evt.ID,
			log.FieldAction, evt.Action)
		return nil
	}
}

func (w *AuditWorker) auditChange(ctx context.Context, evt *amqp.SubscriptionEvent) error {
	sub, err := w.store.GetSubscription(ctx, evt.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between publish and consume.
		atomic.AddInt64(&w.skipped, 1)
		w.logger.WarnContext(ctx, "Subscription no longer exists, skipping audit",
			log.FieldSubscription, evt.ID,
			log.FieldAction, evt.Action)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get subscription %d: %w", evt.ID, err)
	}

	if evt.Action == amqp.ActionCreated {
		atomic.AddInt64(&w.created, 1)
	} else {
		atomic.AddInt64(&w.updated, 1)
	}

	w.logger.InfoContext(ctx, "Subscription changed",
		log.FieldSubscription, sub.ID,
		log.FieldAction, evt.Action,
		"name", sub.Name,
		log.FieldPriceCents, sub.Price.Cents,
		log.FieldFrequency, string(sub.Frequency),
		log.FieldStatus, string(sub.Status),
		log.FieldCategory, sub.CategoryName,
		"timestamp", evt.Timestamp)
	return nil
}

// Stats is a snapshot of the worker's counters.
type Stats struct {
	Created int64
	Updated int64
	Deleted int64
	Skipped int64
}

func (w *AuditWorker) Stats() Stats {
	return Stats{
		Created: atomic.LoadInt64(&w.created),
		Updated: atomic.LoadInt64(&w.updated),
		Deleted: atomic.LoadInt64(&w.deleted),
		Skipped: atomic.LoadInt64(&w.skipped),
	}
}

// LogStats emits the current counters, called on a timer by the worker
// binary.
func (w *AuditWorker) LogStats(ctx context.Context) {
	stats := w.Stats()
	w.logger.InfoContext(ctx, "Audit worker stats",
		"created", stats.Created,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
		"skipped", stats.Skipped)
}
