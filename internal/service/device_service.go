package service

import (
	"context"
	"fmt"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/notify"
	"HelmetMonitorAPI/internal/repository"
)

// ProcessResult summarizes one ingested reading.
type ProcessResult struct {
	AlertsTriggered int            `json:"alertsTriggered"`
	Alerts          []models.Alert `json:"alerts"`
}

// DeviceService is the ingestion coordinator: archive the raw reading,
// run the rules, apply status deltas, gate candidate alerts on the
// debounce ledger, persist realized alerts and dispatch notifications
// for the accident kind.
type DeviceService struct {
	alertService IAlertService
	readingRepo  repository.IReadingRepository
	debounce     *DebounceLedger
	notifier     notify.Notifier
	log          *logger.Logger
}

func NewDeviceService(
	alertService IAlertService,
	readingRepo repository.IReadingRepository,
	debounce *DebounceLedger,
	notifier notify.Notifier,
	log *logger.Logger,
) *DeviceService {
	return &DeviceService{
		alertService: alertService,
		readingRepo:  readingRepo,
		debounce:     debounce,
		notifier:     notifier,
		log:          log,
	}
}

// ProcessDeviceData runs the full ingestion pipeline for one reading.
// The raw archive write is best-effort; status and alert persistence
// failures surface to the caller.
func (s *DeviceService) ProcessDeviceData(ctx context.Context, reading *models.DeviceReading) (*ProcessResult, error) {
	if reading.DeviceID == "" {
		return nil, fmt.Errorf("reading has no deviceId")
	}

	if err := s.readingRepo.Archive(ctx, reading); err != nil {
		s.log.Warn("Failed to archive reading from %s: %v", reading.DeviceID, err)
	}

	result := &ProcessResult{Alerts: []models.Alert{}}

	for _, rule := range EvaluateReading(reading) {
		if hasDelta(rule.Delta) {
			if _, err := s.alertService.UpdateStatus(ctx, rule.Delta); err != nil {
				return nil, err
			}
		}

		if rule.Alert == nil {
			continue
		}

		if s.debounce.IsDebounced(ctx, rule.DebounceKey, reading.DeviceID) {
			s.log.Debug("Suppressed %s alert for %s (within debounce window)",
				rule.Alert.Type, reading.DeviceID)
			continue
		}

		alert, err := s.alertService.AddAlert(ctx, *rule.Alert)
		if err != nil {
			return nil, err
		}

		result.Alerts = append(result.Alerts, alert)
		result.AlertsTriggered++
		s.debounce.Set(ctx, rule.DebounceKey, reading.DeviceID)

		if rule.Notify {
			dispatch := s.notifier.Send(ctx, models.Notification{
				Type:     alert.Type,
				Message:  "Emergency: Accident detected for rider",
				Location: reading.Location,
				DeviceID: reading.DeviceID,
				AlertID:  alert.ID,
			})
			if !dispatch.Success {
				s.log.Warn("Emergency notification failed for %s: %s", reading.DeviceID, dispatch.Error)
			}
		}
	}

	s.log.Info("Processed device data from %s, triggered %d alerts",
		reading.DeviceID, result.AlertsTriggered)

	return result, nil
}

func hasDelta(update models.StatusUpdate) bool {
	return update.Helmet != nil || update.Accident != nil ||
		update.Fatigue != nil || update.Location != nil
}
