package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by subscription change events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// SubscriptionEvent is a lightweight change notification. It carries only
// the subscription ID and the action; consumers fetch current state from
// the store when they need it.
type SubscriptionEvent struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSubscriptionEvent(id int64, action string) *SubscriptionEvent {
	return &SubscriptionEvent{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *SubscriptionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SubscriptionEventFromJSON creates an event from JSON bytes
func SubscriptionEventFromJSON(data []byte) (*SubscriptionEvent, error) {
	var msg SubscriptionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
