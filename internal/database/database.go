// internal/database/database.go

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"HelmetMonitorAPI/internal/config"

	_ "github.com/lib/pq"
)

type Database struct {
	DB  *sql.DB
	cfg *config.StorageConfig
}

func New(cfg *config.StorageConfig) (*Database, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		DB:  db,
		cfg: cfg,
	}, nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := d.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}

// EnsureSchema creates the tables the repositories rely on. Timestamps on
// alerts and readings are stored as RFC3339 text so that lexicographic
// order matches chronological order for retention and listing.
func (d *Database) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			message    TEXT NOT NULL,
			severity   TEXT NOT NULL,
			timestamp  TEXT NOT NULL,
			device_id  TEXT,
			lat        DOUBLE PRECISION,
			lng        DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts (timestamp)`,
		`CREATE TABLE IF NOT EXISTS fleet_status (
			id          INT PRIMARY KEY CHECK (id = 1),
			helmet      TEXT NOT NULL,
			accident    BOOLEAN NOT NULL,
			fatigue     TEXT NOT NULL,
			lat         DOUBLE PRECISION,
			lng         DOUBLE PRECISION,
			last_update TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS device_readings (
			device_id   TEXT NOT NULL,
			received_at TEXT NOT NULL,
			payload     JSONB NOT NULL,
			PRIMARY KEY (device_id, received_at)
		)`,
		`CREATE TABLE IF NOT EXISTS alert_debounce (
			key      TEXT PRIMARY KEY,
			fired_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	return nil
}
