// internal/service/debounce.go

package service

import (
	"context"
	"errors"
	"time"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/repository"
)

// DebounceWindow is how long repeated alerts of the same kind for the
// same device are suppressed.
const DebounceWindow = 30 * time.Second

// DebounceLedger gates alert creation on a per-(kind, device) window.
// Every failure path fails open: a missing entry, an expired entry or a
// store error all allow the alert to fire, because under-alerting on a
// safety system is worse than over-alerting.
type DebounceLedger struct {
	repo   repository.IDebounceRepository
	log    *logger.Logger
	window time.Duration
}

func NewDebounceLedger(repo repository.IDebounceRepository, log *logger.Logger) *DebounceLedger {
	return &DebounceLedger{
		repo:   repo,
		log:    log,
		window: DebounceWindow,
	}
}

func (l *DebounceLedger) key(kind, deviceID string) string {
	return kind + "_" + deviceID
}

// IsDebounced reports whether an alert of this kind fired for this
// device within the window. Expiry is decided here by timestamp
// comparison, so stale entries are treated as absent even if the sweeper
// never ran.
func (l *DebounceLedger) IsDebounced(ctx context.Context, kind, deviceID string) bool {
	firedAt, err := l.repo.LastFired(ctx, l.key(kind, deviceID))
	if err != nil {
		if !errors.Is(err, repository.ErrDebounceNotFound) {
			l.log.Warn("Debounce check failed for %s/%s, allowing alert: %v", kind, deviceID, err)
		}
		return false
	}

	return time.Since(firedAt) < l.window
}

// Set records now as the last fire for the key. Failures are logged and
// swallowed; a lost entry only means a possible duplicate alert.
func (l *DebounceLedger) Set(ctx context.Context, kind, deviceID string) {
	if err := l.repo.SetFired(ctx, l.key(kind, deviceID), time.Now()); err != nil {
		l.log.Warn("Failed to set debounce for %s/%s: %v", kind, deviceID, err)
	}
}

// Sweep deletes expired entries on a fixed interval until the context is
// cancelled. This replaces per-fire deletion timers; read-time expiry in
// IsDebounced stays authoritative regardless.
func (l *DebounceLedger) Sweep(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := l.repo.DeleteExpired(ctx, time.Now().Add(-l.window))
			if err != nil {
				l.log.Warn("Debounce sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				l.log.Debug("Debounce sweep removed %d expired entries", removed)
			}
		}
	}
}
