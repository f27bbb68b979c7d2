package repository

import (
	"context"
	"database/sql"
	"fmt"

	"HelmetMonitorAPI/internal/models"
)

// IAlertRepository defines the persistence operations for alerts. Alerts
// are immutable once inserted; the only mutation is oldest-first eviction
// through TrimToCap.
type IAlertRepository interface {
	Insert(ctx context.Context, alert *models.Alert) error
	ListRecent(ctx context.Context, limit int) ([]models.Alert, error)
	Count(ctx context.Context) (int, error)
	TrimToCap(ctx context.Context, cap int) (int64, error)
	DeleteAll(ctx context.Context) error
}

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (id, type, message, severity, timestamp, device_id, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var deviceID interface{}
	if alert.DeviceID != "" {
		deviceID = alert.DeviceID
	}

	var lat, lng interface{}
	if alert.Location != nil {
		lat = alert.Location.Lat
		lng = alert.Location.Lng
	}

	_, err := r.db.ExecContext(
		ctx, query,
		alert.ID,
		alert.Type,
		alert.Message,
		alert.Severity,
		alert.Timestamp,
		deviceID,
		lat,
		lng,
	)

	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// ListRecent returns the most recent alerts ordered by timestamp
// ascending. The timestamp column is RFC3339 text, so string order is
// chronological order regardless of insertion order under concurrent
// writers. Callers present newest-first.
func (r *AlertRepository) ListRecent(ctx context.Context, limit int) ([]models.Alert, error) {
	query := `
		SELECT id, type, message, severity, timestamp, device_id, lat, lng
		FROM (
			SELECT id, type, message, severity, timestamp, device_id, lat, lng
			FROM alerts
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var deviceID sql.NullString
		var lat, lng sql.NullFloat64

		err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.Severity, &a.Timestamp, &deviceID, &lat, &lng)
		if err != nil {
			return nil, err
		}

		if deviceID.Valid {
			a.DeviceID = deviceID.String
		}
		if lat.Valid && lng.Valid {
			a.Location = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
		}

		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (r *AlertRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// TrimToCap deletes the oldest alerts by timestamp until at most cap
// remain, returning the number evicted.
func (r *AlertRepository) TrimToCap(ctx context.Context, cap int) (int64, error) {
	query := `
		DELETE FROM alerts
		WHERE id IN (
			SELECT id FROM alerts
			ORDER BY timestamp ASC
			LIMIT GREATEST((SELECT COUNT(*) FROM alerts) - $1, 0)
		)
	`

	result, err := r.db.ExecContext(ctx, query, cap)
	if err != nil {
		return 0, fmt.Errorf("failed to trim alerts: %w", err)
	}

	return result.RowsAffected()
}

func (r *AlertRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alerts`); err != nil {
		return fmt.Errorf("failed to clear alerts: %w", err)
	}
	return nil
}
