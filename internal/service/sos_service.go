package service

import (
	"context"
	"fmt"
	"time"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/notify"
)

// SOSService is the degenerate ingestion path: it manufactures a
// critical "sos" alert directly, bypassing rules and debounce, then
// attempts a notification. A failed dispatch is returned as data; the
// alert is already durable by then.
type SOSService struct {
	alertService IAlertService
	notifier     notify.Notifier
	log          *logger.Logger
}

func NewSOSService(alertService IAlertService, notifier notify.Notifier, log *logger.Logger) *SOSService {
	return &SOSService{
		alertService: alertService,
		notifier:     notifier,
		log:          log,
	}
}

func (s *SOSService) TriggerSOS(ctx context.Context, req models.SOSRequest) (*models.SOSResult, error) {
	sosType := req.Type
	if sosType == "" {
		sosType = "manual"
	}

	timestamp := req.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	alert, err := s.alertService.AddAlert(ctx, models.AlertDraft{
		Type:      models.TypeSOS,
		Message:   fmt.Sprintf("SOS alert triggered (%s)", sosType),
		Severity:  models.SeverityCritical,
		Timestamp: timestamp,
		Location:  req.Location,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("SOS alert created: %s (%s)", alert.ID, sosType)

	dispatch := s.notifier.Send(ctx, models.Notification{
		Type:     sosType,
		Message:  "EMERGENCY: SOS alert triggered by rider",
		Location: req.Location,
		AlertID:  alert.ID,
	})
	if !dispatch.Success {
		s.log.Warn("SOS notification failed for alert %s: %s", alert.ID, dispatch.Error)
	}

	return &models.SOSResult{
		AlertID:      alert.ID,
		Notification: dispatch,
	}, nil
}
