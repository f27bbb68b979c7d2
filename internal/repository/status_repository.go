package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"HelmetMonitorAPI/internal/models"
)

// IStatusRepository manages the single current fleet status record.
type IStatusRepository interface {
	EnsureDefault(ctx context.Context) error
	Get(ctx context.Context) (models.Status, error)
	Merge(ctx context.Context, update models.StatusUpdate) (models.Status, error)
	StampLastUpdate(ctx context.Context) error
}

type StatusRepository struct {
	db *sql.DB
}

func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// EnsureDefault writes the default status exactly once. ON CONFLICT makes
// the bootstrap idempotent and safe against concurrent callers.
func (r *StatusRepository) EnsureDefault(ctx context.Context) error {
	def := models.DefaultStatus()

	query := `
		INSERT INTO fleet_status (id, helmet, accident, fatigue, lat, lng, last_update)
		VALUES (1, $1, $2, $3, NULL, NULL, $4)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, def.Helmet, def.Accident, def.Fatigue, def.LastUpdate)
	if err != nil {
		return fmt.Errorf("failed to initialize default status: %w", err)
	}

	return nil
}

func (r *StatusRepository) Get(ctx context.Context) (models.Status, error) {
	query := `SELECT helmet, accident, fatigue, lat, lng, last_update FROM fleet_status WHERE id = 1`

	var status models.Status
	var lat, lng sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query).Scan(
		&status.Helmet,
		&status.Accident,
		&status.Fatigue,
		&lat,
		&lng,
		&status.LastUpdate,
	)

	if err == sql.ErrNoRows {
		return models.DefaultStatus(), nil
	}
	if err != nil {
		return models.Status{}, fmt.Errorf("failed to get status: %w", err)
	}

	if lat.Valid && lng.Valid {
		status.Location = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
	}

	return status, nil
}

// Merge applies a partial update in a single statement. Nil fields keep
// their stored value; last_update is stamped on every write. Concurrent
// merges are last-write-wins per column, which is the designed behavior.
func (r *StatusRepository) Merge(ctx context.Context, update models.StatusUpdate) (models.Status, error) {
	query := `
		UPDATE fleet_status SET
			helmet      = COALESCE($1, helmet),
			accident    = COALESCE($2, accident),
			fatigue     = COALESCE($3, fatigue),
			lat         = COALESCE($4, lat),
			lng         = COALESCE($5, lng),
			last_update = $6
		WHERE id = 1
		RETURNING helmet, accident, fatigue, lat, lng, last_update
	`

	var lat, lng interface{}
	if update.Location != nil {
		lat = update.Location.Lat
		lng = update.Location.Lng
	}

	var status models.Status
	var outLat, outLng sql.NullFloat64

	err := r.db.QueryRowContext(
		ctx, query,
		update.Helmet,
		update.Accident,
		update.Fatigue,
		lat,
		lng,
		time.Now().UTC().Format(time.RFC3339),
	).Scan(
		&status.Helmet,
		&status.Accident,
		&status.Fatigue,
		&outLat,
		&outLng,
		&status.LastUpdate,
	)

	if err != nil {
		return models.Status{}, fmt.Errorf("failed to merge status: %w", err)
	}

	if outLat.Valid && outLng.Valid {
		status.Location = &models.Location{Lat: outLat.Float64, Lng: outLng.Float64}
	}

	return status, nil
}

func (r *StatusRepository) StampLastUpdate(ctx context.Context) error {
	query := `UPDATE fleet_status SET last_update = $1 WHERE id = 1`

	_, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to stamp last_update: %w", err)
	}

	return nil
}
