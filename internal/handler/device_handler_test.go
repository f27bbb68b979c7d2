package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/notify"
	"HelmetMonitorAPI/internal/repository"
	"HelmetMonitorAPI/internal/service"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(logger.Config{Level: logger.FATAL})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

func newTestDeviceHandler(t *testing.T) *DeviceHandler {
	t.Helper()

	log := newTestLogger(t)
	alertService := service.NewAlertService(
		repository.NewMemoryAlertRepository(),
		repository.NewMemoryStatusRepository(),
		nil, log)
	ledger := service.NewDebounceLedger(repository.NewMemoryDebounceRepository(), log)
	deviceService := service.NewDeviceService(
		alertService,
		repository.NewMemoryReadingRepository(),
		ledger,
		notify.NewDisabledNotifier(log),
		log)

	return NewDeviceHandler(deviceService, log)
}

func TestParseDeviceReadingMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]interface{}
		missing []string
	}{
		{
			name:    "empty payload",
			raw:     map[string]interface{}{},
			missing: []string{"deviceId", "timestamp", "lat", "lng"},
		},
		{
			name: "partial payload",
			raw: map[string]interface{}{
				"deviceId":  "helmet-001",
				"timestamp": "2026-08-28T10:00:00Z",
			},
			missing: []string{"lat", "lng"},
		},
		{
			name: "explicit null counts as missing",
			raw: map[string]interface{}{
				"deviceId":  "helmet-001",
				"timestamp": "2026-08-28T10:00:00Z",
				"lat":       nil,
				"lng":       1.0,
			},
			missing: []string{"lat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, missing, err := ParseDeviceReading(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reading != nil {
				t.Error("expected nil reading on validation failure")
			}
			if len(missing) != len(tt.missing) {
				t.Fatalf("expected missing %v, got %v", tt.missing, missing)
			}
			for i := range missing {
				if missing[i] != tt.missing[i] {
					t.Errorf("expected missing %v, got %v", tt.missing, missing)
					break
				}
			}
		})
	}
}

func TestParseDeviceReadingCoercesStringCoordinates(t *testing.T) {
	reading, missing, err := ParseDeviceReading(map[string]interface{}{
		"deviceId":  "helmet-001",
		"timestamp": "2026-08-28T10:00:00Z",
		"lat":       "1.5",
		"lng":       "-2.5",
	})
	if err != nil || len(missing) > 0 {
		t.Fatalf("unexpected failure: missing=%v err=%v", missing, err)
	}

	if reading.Location.Lat != 1.5 || reading.Location.Lng != -2.5 {
		t.Errorf("coordinates not coerced, got %+v", reading.Location)
	}
}

func TestParseDeviceReadingRejectsBadCoordinates(t *testing.T) {
	_, _, err := ParseDeviceReading(map[string]interface{}{
		"deviceId":  "helmet-001",
		"timestamp": "2026-08-28T10:00:00Z",
		"lat":       "not-a-number",
		"lng":       1.0,
	})
	if err == nil {
		t.Error("expected an error for unparseable lat")
	}
}

func TestParseDeviceReadingExtractsSensorBlocks(t *testing.T) {
	reading, missing, err := ParseDeviceReading(map[string]interface{}{
		"deviceId":     "helmet-001",
		"timestamp":    "2026-08-28T10:00:00Z",
		"lat":          1.0,
		"lng":          2.0,
		"helmetStatus": false,
		"accelerometer": map[string]interface{}{
			"x": 20.0, "y": 0.0, "z": 0.0,
		},
		"heartRate":    130.0,
		"batteryLevel": 15.0,
	})
	if err != nil || len(missing) > 0 {
		t.Fatalf("unexpected failure: missing=%v err=%v", missing, err)
	}

	if reading.HelmetStatus == nil || *reading.HelmetStatus {
		t.Error("helmetStatus not extracted")
	}
	if reading.Accelerometer == nil || reading.Accelerometer.X != 20 {
		t.Error("accelerometer not extracted")
	}
	if reading.Gyroscope != nil {
		t.Error("absent gyroscope must stay nil")
	}
	if reading.HeartRate == nil || *reading.HeartRate != 130 {
		t.Error("heartRate not extracted")
	}
	if reading.BatteryLevel == nil || *reading.BatteryLevel != 15 {
		t.Error("batteryLevel not extracted")
	}
}

func TestIngestDeviceDataMissingFieldsResponse(t *testing.T) {
	h := newTestDeviceHandler(t)

	body, _ := json.Marshal(map[string]interface{}{
		"deviceId": "helmet-001",
	})
	req := httptest.NewRequest(http.MethodPost, "/device-data", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.IngestDeviceData(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "Missing required fields" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
	if len(resp.MissingFields) != 3 {
		t.Errorf("expected 3 missing fields, got %v", resp.MissingFields)
	}
}

func TestIngestDeviceDataSuccess(t *testing.T) {
	h := newTestDeviceHandler(t)

	body, _ := json.Marshal(map[string]interface{}{
		"deviceId":  "helmet-001",
		"timestamp": "2026-08-28T10:00:00Z",
		"lat":       1.0,
		"lng":       2.0,
		"accelerometer": map[string]interface{}{
			"x": 20.0, "y": 0.0, "z": 0.0,
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/device-data", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.IngestDeviceData(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.DeviceDataResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
	if resp.Message != "Device data processed successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.AlertsTriggered != 1 {
		t.Errorf("expected 1 alert triggered, got %d", resp.AlertsTriggered)
	}
}

func TestIngestDeviceDataInvalidBody(t *testing.T) {
	h := newTestDeviceHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/device-data", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	h.IngestDeviceData(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
