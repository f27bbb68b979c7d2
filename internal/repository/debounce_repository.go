package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrDebounceNotFound signals that no entry exists for a debounce key.
var ErrDebounceNotFound = errors.New("debounce entry not found")

// IDebounceRepository stores the last-fired time per (alert kind, device)
// key. Expiry semantics live above this layer: callers compare the
// returned time against the debounce window and treat stale entries as
// absent even if cleanup never ran.
type IDebounceRepository interface {
	LastFired(ctx context.Context, key string) (time.Time, error)
	SetFired(ctx context.Context, key string, at time.Time) error
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

type DebounceRepository struct {
	db *sql.DB
}

func NewDebounceRepository(db *sql.DB) *DebounceRepository {
	return &DebounceRepository{db: db}
}

func (r *DebounceRepository) LastFired(ctx context.Context, key string) (time.Time, error) {
	var firedAt time.Time

	err := r.db.QueryRowContext(ctx,
		`SELECT fired_at FROM alert_debounce WHERE key = $1`, key).Scan(&firedAt)

	if err == sql.ErrNoRows {
		return time.Time{}, ErrDebounceNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read debounce entry: %w", err)
	}

	return firedAt, nil
}

func (r *DebounceRepository) SetFired(ctx context.Context, key string, at time.Time) error {
	query := `
		INSERT INTO alert_debounce (key, fired_at)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET fired_at = EXCLUDED.fired_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, at); err != nil {
		return fmt.Errorf("failed to set debounce entry: %w", err)
	}

	return nil
}

func (r *DebounceRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM alert_debounce WHERE fired_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired debounce entries: %w", err)
	}

	return result.RowsAffected()
}
