package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/repository"
	"HelmetMonitorAPI/internal/websocket"

	"github.com/google/uuid"
)

const (
	// MaxStoredAlerts is the retention cap; once exceeded the oldest
	// alerts by timestamp are evicted.
	MaxStoredAlerts = 100

	// RecentAlertLimit bounds GET /alerts responses.
	RecentAlertLimit = 50
)

// IAlertService defines the business logic around the alert store and
// the fleet status record.
type IAlertService interface {
	AddAlert(ctx context.Context, draft models.AlertDraft) (models.Alert, error)
	GetLatestAlerts(ctx context.Context) (*models.AlertsResponse, error)
	UpdateStatus(ctx context.Context, update models.StatusUpdate) (models.Status, error)
	ClearAlerts(ctx context.Context) error
}

type AlertService struct {
	alertRepo  repository.IAlertRepository
	statusRepo repository.IStatusRepository
	hub        *websocket.Hub
	log        *logger.Logger
}

func NewAlertService(
	alertRepo repository.IAlertRepository,
	statusRepo repository.IStatusRepository,
	hub *websocket.Hub,
	log *logger.Logger,
) *AlertService {
	return &AlertService{
		alertRepo:  alertRepo,
		statusRepo: statusRepo,
		hub:        hub,
		log:        log,
	}
}

// AddAlert assigns an id, defaults the timestamp, persists the alert,
// trims retention (best-effort) and stamps status.lastUpdate. The stored
// alert is broadcast to connected dashboard clients.
func (s *AlertService) AddAlert(ctx context.Context, draft models.AlertDraft) (models.Alert, error) {
	timestamp := draft.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	alert := models.Alert{
		ID:        uuid.NewString(),
		Type:      draft.Type,
		Message:   draft.Message,
		Severity:  draft.Severity,
		Timestamp: timestamp,
		DeviceID:  draft.DeviceID,
		Location:  draft.Location,
	}

	if err := s.alertRepo.Insert(ctx, &alert); err != nil {
		return models.Alert{}, fmt.Errorf("failed to add alert: %w", err)
	}

	// Retention trim never blocks the ingestion path.
	if removed, err := s.alertRepo.TrimToCap(ctx, MaxStoredAlerts); err != nil {
		s.log.Warn("Failed to trim old alerts: %v", err)
	} else if removed > 0 {
		s.log.Info("Cleaned up %d old alerts", removed)
	}

	if err := s.statusRepo.StampLastUpdate(ctx); err != nil {
		return models.Alert{}, fmt.Errorf("failed to stamp status after alert: %w", err)
	}

	s.notify(alert)
	s.log.Info("New alert added: %s - %s", alert.Type, alert.Message)

	return alert, nil
}

// GetLatestAlerts returns up to RecentAlertLimit alerts newest-first plus
// the current status. The sort key is the alert timestamp, not store
// insertion order, since the two can diverge under concurrent writers.
func (s *AlertService) GetLatestAlerts(ctx context.Context) (*models.AlertsResponse, error) {
	alerts, err := s.alertRepo.ListRecent(ctx, RecentAlertLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].Timestamp > alerts[j].Timestamp
	})

	status, err := s.statusRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status: %w", err)
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}

	return &models.AlertsResponse{
		Alerts: alerts,
		Status: status,
	}, nil
}

// UpdateStatus merges a partial update into the status record.
func (s *AlertService) UpdateStatus(ctx context.Context, update models.StatusUpdate) (models.Status, error) {
	status, err := s.statusRepo.Merge(ctx, update)
	if err != nil {
		return models.Status{}, fmt.Errorf("failed to update status: %w", err)
	}

	s.log.Debug("Status updated: helmet=%s accident=%v fatigue=%s",
		status.Helmet, status.Accident, status.Fatigue)

	return status, nil
}

func (s *AlertService) ClearAlerts(ctx context.Context) error {
	if err := s.alertRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear alerts: %w", err)
	}

	s.log.Info("All alerts cleared")
	return nil
}

// notify pushes the alert to connected clients via the WebSocket hub.
func (s *AlertService) notify(alert models.Alert) {
	if s.hub != nil {
		s.hub.Broadcast("ALERT", alert)
	}
}
