package service

import (
	"context"
	"testing"

	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/repository"
)

func newSOSFixture(t *testing.T, notifier *fakeNotifier) (*SOSService, *repository.MemoryAlertRepository) {
	t.Helper()

	log := newTestLogger(t)
	alertRepo := repository.NewMemoryAlertRepository()
	statusRepo := repository.NewMemoryStatusRepository()
	alertService := NewAlertService(alertRepo, statusRepo, nil, log)

	return NewSOSService(alertService, notifier, log), alertRepo
}

func TestTriggerSOSCreatesCriticalAlert(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, alertRepo := newSOSFixture(t, notifier)
	ctx := context.Background()

	result, err := svc.TriggerSOS(ctx, models.SOSRequest{})
	if err != nil {
		t.Fatalf("TriggerSOS failed: %v", err)
	}
	if result.AlertID == "" {
		t.Error("SOS result has no alert id")
	}
	if !result.Notification.Success {
		t.Error("expected successful dispatch")
	}

	alerts, _ := alertRepo.ListRecent(ctx, 0)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 stored alert, got %d", len(alerts))
	}
	if alerts[0].Type != models.TypeSOS {
		t.Errorf("expected sos alert, got %q", alerts[0].Type)
	}
	if alerts[0].Severity != models.SeverityCritical {
		t.Errorf("expected critical severity, got %q", alerts[0].Severity)
	}
	if alerts[0].Message != "SOS alert triggered (manual)" {
		t.Errorf("unexpected message %q", alerts[0].Message)
	}
}

func TestTriggerSOSCarriesTypeAndLocation(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, alertRepo := newSOSFixture(t, notifier)
	ctx := context.Background()

	if _, err := svc.TriggerSOS(ctx, models.SOSRequest{
		Type:     "fall_detected",
		Location: &models.Location{Lat: 1, Lng: 2},
	}); err != nil {
		t.Fatalf("TriggerSOS failed: %v", err)
	}

	alerts, _ := alertRepo.ListRecent(ctx, 0)
	if alerts[0].Message != "SOS alert triggered (fall_detected)" {
		t.Errorf("unexpected message %q", alerts[0].Message)
	}
	if alerts[0].Location == nil || alerts[0].Location.Lng != 2 {
		t.Error("alert did not carry the SOS location")
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Message != "EMERGENCY: SOS alert triggered by rider" {
		t.Errorf("unexpected notification message %q", notifier.sent[0].Message)
	}
	if notifier.sent[0].Location == nil || notifier.sent[0].Location.Lat != 1 {
		t.Error("notification did not carry the SOS location")
	}
}

func TestTriggerSOSKeepsClientTimestamp(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, alertRepo := newSOSFixture(t, notifier)
	ctx := context.Background()

	if _, err := svc.TriggerSOS(ctx, models.SOSRequest{
		Timestamp: "2026-08-28T09:30:00Z",
	}); err != nil {
		t.Fatalf("TriggerSOS failed: %v", err)
	}

	alerts, _ := alertRepo.ListRecent(ctx, 0)
	if alerts[0].Timestamp != "2026-08-28T09:30:00Z" {
		t.Errorf("client timestamp was rewritten to %q", alerts[0].Timestamp)
	}
}

func TestTriggerSOSDispatchFailureDoesNotFailRequest(t *testing.T) {
	notifier := &fakeNotifier{fail: true}
	svc, alertRepo := newSOSFixture(t, notifier)
	ctx := context.Background()

	result, err := svc.TriggerSOS(ctx, models.SOSRequest{})
	if err != nil {
		t.Fatalf("dispatch failure must not fail the request: %v", err)
	}

	if result.Notification.Success {
		t.Error("expected failed dispatch in the result")
	}
	if result.Notification.Error == "" {
		t.Error("failed dispatch should carry an error string")
	}

	count, _ := alertRepo.Count(ctx)
	if count != 1 {
		t.Errorf("alert must be durable despite dispatch failure, got %d", count)
	}
}

func TestTriggerSOSBypassesDebounce(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, alertRepo := newSOSFixture(t, notifier)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.TriggerSOS(ctx, models.SOSRequest{}); err != nil {
			t.Fatalf("TriggerSOS %d failed: %v", i, err)
		}
	}

	count, _ := alertRepo.Count(ctx)
	if count != 3 {
		t.Errorf("every SOS must create an alert, got %d", count)
	}
}
