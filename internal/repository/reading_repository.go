package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"HelmetMonitorAPI/internal/models"
)

// readingRetention is the per-device cap on archived raw readings.
const readingRetention = 100

// IReadingRepository archives raw device payloads for historical
// analysis. Archiving is best-effort throughout: the ingestion path
// never fails because an archive write failed.
type IReadingRepository interface {
	Archive(ctx context.Context, reading *models.DeviceReading) error
	CountByDevice(ctx context.Context, deviceID string) (int, error)
}

type ReadingRepository struct {
	db *sql.DB
}

func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Archive stores the full raw reading under (device, receipt time) and
// trims the device's history to the most recent entries, oldest first.
func (r *ReadingRepository) Archive(ctx context.Context, reading *models.DeviceReading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	receivedAt := time.Now().UTC().Format(time.RFC3339Nano)

	query := `
		INSERT INTO device_readings (device_id, received_at, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id, received_at) DO UPDATE SET payload = EXCLUDED.payload
	`

	if _, err := r.db.ExecContext(ctx, query, reading.DeviceID, receivedAt, payload); err != nil {
		return fmt.Errorf("failed to archive reading: %w", err)
	}

	trim := `
		DELETE FROM device_readings
		WHERE device_id = $1 AND received_at IN (
			SELECT received_at FROM device_readings
			WHERE device_id = $1
			ORDER BY received_at ASC
			LIMIT GREATEST(
				(SELECT COUNT(*) FROM device_readings WHERE device_id = $1) - $2, 0)
		)
	`

	if _, err := r.db.ExecContext(ctx, trim, reading.DeviceID, readingRetention); err != nil {
		return fmt.Errorf("failed to trim device readings: %w", err)
	}

	return nil
}

func (r *ReadingRepository) CountByDevice(ctx context.Context, deviceID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM device_readings WHERE device_id = $1`, deviceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}
