// internal/repository/memory.go
//
// In-memory implementations of the repository interfaces. Used as the
// storage backend in development (STORAGE_BACKEND=memory) and by tests.

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"HelmetMonitorAPI/internal/models"
)

// --- Alerts ---

type MemoryAlertRepository struct {
	mu     sync.RWMutex
	alerts []models.Alert
}

func NewMemoryAlertRepository() *MemoryAlertRepository {
	return &MemoryAlertRepository{}
}

func (r *MemoryAlertRepository) Insert(_ context.Context, alert *models.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *MemoryAlertRepository) ListRecent(_ context.Context, limit int) ([]models.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := make([]models.Alert, len(r.alerts))
	copy(sorted, r.alerts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	return sorted, nil
}

func (r *MemoryAlertRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.alerts), nil
}

func (r *MemoryAlertRepository) TrimToCap(_ context.Context, cap int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	excess := len(r.alerts) - cap
	if excess <= 0 {
		return 0, nil
	}

	sort.Slice(r.alerts, func(i, j int) bool {
		return r.alerts[i].Timestamp < r.alerts[j].Timestamp
	})
	r.alerts = append([]models.Alert(nil), r.alerts[excess:]...)
	return int64(excess), nil
}

func (r *MemoryAlertRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = nil
	return nil
}

// --- Status ---

type MemoryStatusRepository struct {
	mu     sync.Mutex
	status *models.Status
}

func NewMemoryStatusRepository() *MemoryStatusRepository {
	return &MemoryStatusRepository{}
}

func (r *MemoryStatusRepository) EnsureDefault(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == nil {
		def := models.DefaultStatus()
		r.status = &def
	}
	return nil
}

func (r *MemoryStatusRepository) Get(_ context.Context) (models.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == nil {
		return models.DefaultStatus(), nil
	}
	return *r.status, nil
}

func (r *MemoryStatusRepository) Merge(_ context.Context, update models.StatusUpdate) (models.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == nil {
		def := models.DefaultStatus()
		r.status = &def
	}

	if update.Helmet != nil {
		r.status.Helmet = *update.Helmet
	}
	if update.Accident != nil {
		r.status.Accident = *update.Accident
	}
	if update.Fatigue != nil {
		r.status.Fatigue = *update.Fatigue
	}
	if update.Location != nil {
		loc := *update.Location
		r.status.Location = &loc
	}
	r.status.LastUpdate = time.Now().UTC().Format(time.RFC3339)

	return *r.status, nil
}

func (r *MemoryStatusRepository) StampLastUpdate(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == nil {
		def := models.DefaultStatus()
		r.status = &def
	}
	r.status.LastUpdate = time.Now().UTC().Format(time.RFC3339)
	return nil
}

// --- Readings ---

type MemoryReadingRepository struct {
	mu       sync.Mutex
	readings map[string][]models.DeviceReading
}

func NewMemoryReadingRepository() *MemoryReadingRepository {
	return &MemoryReadingRepository{
		readings: make(map[string][]models.DeviceReading),
	}
}

func (r *MemoryReadingRepository) Archive(_ context.Context, reading *models.DeviceReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := append(r.readings[reading.DeviceID], *reading)
	if len(buf) > readingRetention {
		buf = buf[len(buf)-readingRetention:]
	}
	r.readings[reading.DeviceID] = buf
	return nil
}

func (r *MemoryReadingRepository) CountByDevice(_ context.Context, deviceID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.readings[deviceID]), nil
}

// --- Debounce ---

type MemoryDebounceRepository struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemoryDebounceRepository() *MemoryDebounceRepository {
	return &MemoryDebounceRepository{
		entries: make(map[string]time.Time),
	}
}

func (r *MemoryDebounceRepository) LastFired(_ context.Context, key string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at, ok := r.entries[key]
	if !ok {
		return time.Time{}, ErrDebounceNotFound
	}
	return at, nil
}

func (r *MemoryDebounceRepository) SetFired(_ context.Context, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = at
	return nil
}

func (r *MemoryDebounceRepository) DeleteExpired(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for key, at := range r.entries {
		if at.Before(olderThan) {
			delete(r.entries, key)
			removed++
		}
	}
	return removed, nil
}
