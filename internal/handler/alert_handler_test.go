package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/repository"
	"HelmetMonitorAPI/internal/service"
)

func newTestAlertHandler(t *testing.T) (*AlertHandler, service.IAlertService) {
	t.Helper()

	log := newTestLogger(t)
	alertService := service.NewAlertService(
		repository.NewMemoryAlertRepository(),
		repository.NewMemoryStatusRepository(),
		nil, log)

	return NewAlertHandler(alertService, service.NewReportService(alertService, log), log), alertService
}

func TestCreateAlertRequiresTypeAndMessage(t *testing.T) {
	h, _ := newTestAlertHandler(t)

	body, _ := json.Marshal(models.CreateAlertRequest{Type: "system"})
	req := httptest.NewRequest(http.MethodPost, "/alerts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateAlert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateAlertDefaultsSeverity(t *testing.T) {
	h, _ := newTestAlertHandler(t)

	body, _ := json.Marshal(models.CreateAlertRequest{
		Type:    "system",
		Message: "manual test alert",
	})
	req := httptest.NewRequest(http.MethodPost, "/alerts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateAlert(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool         `json:"success"`
		Alert   models.Alert `json:"alert"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
	if resp.Alert.Severity != models.SeverityInfo {
		t.Errorf("expected default info severity, got %q", resp.Alert.Severity)
	}
	if resp.Alert.ID == "" {
		t.Error("created alert has no id")
	}
}

func TestGetAlertsReturnsAlertsAndStatus(t *testing.T) {
	h, alertService := newTestAlertHandler(t)

	if _, err := alertService.AddAlert(context.Background(), models.AlertDraft{
		Type:     models.TypeSystem,
		Message:  "seeded",
		Severity: models.SeverityInfo,
	}); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
	rec := httptest.NewRecorder()

	h.GetAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.AlertsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Alerts) != 1 {
		t.Errorf("expected 1 alert, got %d", len(resp.Alerts))
	}
	if resp.Status.Helmet == "" {
		t.Error("response is missing the status snapshot")
	}
}

func TestClearAlertsEndpoint(t *testing.T) {
	h, alertService := newTestAlertHandler(t)
	ctx := context.Background()

	if _, err := alertService.AddAlert(ctx, models.AlertDraft{
		Type:     models.TypeSystem,
		Message:  "seeded",
		Severity: models.SeverityInfo,
	}); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/alerts", nil)
	rec := httptest.NewRecorder()
	h.ClearAlerts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp, err := alertService.GetLatestAlerts(ctx)
	if err != nil {
		t.Fatalf("GetLatestAlerts failed: %v", err)
	}
	if len(resp.Alerts) != 0 {
		t.Errorf("expected no alerts after clear, got %d", len(resp.Alerts))
	}
}

func TestDownloadReportReturnsPDF(t *testing.T) {
	h, _ := newTestAlertHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/alerts/report", nil)
	rec := httptest.NewRecorder()

	h.DownloadReport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response body is not a PDF")
	}
}
