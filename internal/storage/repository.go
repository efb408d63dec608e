package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"subtrack/internal/core"
	"subtrack/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements store.Store on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE lower(name) = lower(?)`, name).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, store.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if isConstraintErr(err) {
		// Unique index on lower(name) guarantees case-insensitive
		// uniqueness even under concurrent creates.
		return core.Category{}, store.ErrConflict
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

const subscriptionColumns = `s.id, s.name, s.price_cents, s.frequency, s.status, s.category_id, c.name`

func scanSubscription(row interface{ Scan(...any) error }) (core.Subscription, error) {
	var sub core.Subscription
	var cents int64
	var freq, status string
	err := row.Scan(&sub.ID, &sub.Name, &cents, &freq, &status, &sub.CategoryID, &sub.CategoryName)
	if err != nil {
		return core.Subscription{}, err
	}
	sub.Price = core.Money{Cents: cents}
	sub.Frequency = core.Frequency(freq)
	sub.Status = core.Status(status)
	return sub, nil
}

func (r *SQLiteRepository) querySubscriptions(ctx context.Context, where string, args ...any) ([]core.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + `
		FROM subscriptions s JOIN categories c ON c.id = s.category_id ` + where + ` ORDER BY s.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, categoryFilter string) ([]core.Subscription, error) {
	if categoryFilter == "" {
		return r.querySubscriptions(ctx, "")
	}
	return r.querySubscriptions(ctx, `WHERE lower(c.name) = lower(?)`, categoryFilter)
}

func (r *SQLiteRepository) ListActiveSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	return r.querySubscriptions(ctx, `WHERE s.status = ?`, string(core.Active))
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id int64) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+`
		FROM subscriptions s JOIN categories c ON c.id = s.category_id WHERE s.id = ?`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, store.ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (r *SQLiteRepository) GetSubscriptionByName(ctx context.Context, name string) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+`
		FROM subscriptions s JOIN categories c ON c.id = s.category_id WHERE s.name = ?`, name)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, store.ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription by name: %w", err)
	}
	return sub, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (name, price_cents, frequency, status, category_id) VALUES (?, ?, ?, ?, ?)`,
		sub.Name, sub.Price.Cents, string(sub.Frequency), string(sub.Status), sub.CategoryID)
	if isConstraintErr(err) {
		return core.Subscription{}, store.ErrConflict
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Subscription{}, fmt.Errorf("subscription insert id: %w", err)
	}

	slog.InfoContext(ctx, "Subscription saved to SQLite",
		"id", id,
		"name", sub.Name,
		"price_cents", sub.Price.Cents,
		"frequency", string(sub.Frequency),
		"status", string(sub.Status))

	return r.GetSubscription(ctx, id)
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET name = ?, price_cents = ?, frequency = ?, status = ?, category_id = ? WHERE id = ?`,
		sub.Name, sub.Price.Cents, string(sub.Frequency), string(sub.Status), sub.CategoryID, sub.ID)
	if isConstraintErr(err) {
		return core.Subscription{}, store.ErrConflict
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription rows: %w", err)
	}
	if affected == 0 {
		return core.Subscription{}, store.ErrNotFound
	}
	return r.GetSubscription(ctx, sub.ID)
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context) (core.Budget, error) {
	var b core.Budget
	var cents int64
	err := r.db.QueryRowContext(ctx, `SELECT id, monthly_limit_cents FROM budget WHERE id = 1`).
		Scan(&b.ID, &cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, store.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.MonthlyLimit = core.Money{Cents: cents}
	return b, nil
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, limit core.Money) (core.Budget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget (id, monthly_limit_cents) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET monthly_limit_cents = excluded.monthly_limit_cents`,
		limit.Cents)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return core.Budget{ID: 1, MonthlyLimit: limit}, nil
}

func isConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint failed")
}
