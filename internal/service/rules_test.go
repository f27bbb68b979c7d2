package service

import (
	"testing"

	"HelmetMonitorAPI/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestDetectAccident(t *testing.T) {
	tests := []struct {
		name  string
		accel *models.Vector3
		gyro  *models.Vector3
		want  bool
	}{
		{
			name:  "magnitude above threshold",
			accel: &models.Vector3{X: 16, Y: 0, Z: 0},
			want:  true,
		},
		{
			name:  "magnitude below threshold",
			accel: &models.Vector3{X: 3, Y: 4, Z: 0},
			want:  false,
		},
		{
			name:  "magnitude exactly at threshold",
			accel: &models.Vector3{X: 15, Y: 0, Z: 0},
			want:  false,
		},
		{
			name:  "combined axes exceed threshold",
			accel: &models.Vector3{X: 9, Y: 9, Z: 9},
			want:  true,
		},
		{
			name: "no accelerometer",
			gyro: &models.Vector3{X: 500, Y: 500, Z: 500},
			want: false,
		},
		{
			name:  "gyroscope values do not contribute",
			accel: &models.Vector3{X: 1, Y: 1, Z: 1},
			gyro:  &models.Vector3{X: 999, Y: 999, Z: 999},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectAccident(tt.accel, tt.gyro); got != tt.want {
				t.Errorf("DetectAccident() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFatigue(t *testing.T) {
	tests := []struct {
		heartRate float64
		want      string
	}{
		{heartRate: 45, want: models.FatigueCritical},
		{heartRate: 49, want: models.FatigueCritical},
		{heartRate: 50, want: models.FatigueTired},
		{heartRate: 55, want: models.FatigueTired},
		{heartRate: 60, want: models.FatigueNormal},
		{heartRate: 75, want: models.FatigueNormal},
		{heartRate: 100, want: models.FatigueNormal},
		{heartRate: 101, want: models.FatigueTired},
		{heartRate: 120, want: models.FatigueTired},
		{heartRate: 121, want: models.FatigueCritical},
		{heartRate: 130, want: models.FatigueCritical},
		{heartRate: 0, want: models.FatigueNormal},
		{heartRate: -5, want: models.FatigueNormal},
	}

	for _, tt := range tests {
		if got := DetectFatigue(tt.heartRate); got != tt.want {
			t.Errorf("DetectFatigue(%v) = %q, want %q", tt.heartRate, got, tt.want)
		}
	}
}

func TestEvaluateReadingOrderAndContents(t *testing.T) {
	reading := &models.DeviceReading{
		DeviceID:      "helmet-001",
		Timestamp:     "2026-08-28T10:00:00Z",
		Location:      &models.Location{Lat: 1.5, Lng: 2.5},
		HelmetStatus:  boolPtr(false),
		Accelerometer: &models.Vector3{X: 20, Y: 0, Z: 0},
		HeartRate:     floatPtr(130),
		BatteryLevel:  floatPtr(15),
	}

	results := EvaluateReading(reading)
	if len(results) != 5 {
		t.Fatalf("expected 5 rule results, got %d", len(results))
	}

	// Helmet disconnect
	if results[0].Delta.Helmet == nil || *results[0].Delta.Helmet != models.HelmetDisconnected {
		t.Error("helmet rule did not set disconnected status")
	}
	if results[0].Alert == nil || results[0].Alert.Type != models.TypeHelmet {
		t.Error("helmet rule did not produce a helmet alert")
	}
	if results[0].DebounceKey != models.DebounceHelmetDisconnect {
		t.Errorf("unexpected helmet debounce key %q", results[0].DebounceKey)
	}
	if results[0].Notify {
		t.Error("helmet alerts must not request notifications")
	}

	// Accident
	if results[1].Delta.Accident == nil || !*results[1].Delta.Accident {
		t.Error("accident rule did not flip accident status")
	}
	if results[1].Alert == nil || results[1].Alert.Severity != models.SeverityCritical {
		t.Error("accident alert should be critical")
	}
	if results[1].Alert.Location == nil || results[1].Alert.Location.Lat != 1.5 {
		t.Error("accident alert should carry the reading location")
	}
	if !results[1].Notify {
		t.Error("accident alerts must request a notification")
	}

	// Fatigue
	if results[2].Delta.Fatigue == nil || *results[2].Delta.Fatigue != models.FatigueCritical {
		t.Error("fatigue rule did not report critical")
	}
	if results[2].Alert == nil || results[2].Alert.Severity != models.SeverityWarning {
		t.Error("critical fatigue alert should carry warning severity")
	}

	// Location
	if results[3].Delta.Location == nil || results[3].Delta.Location.Lng != 2.5 {
		t.Error("location rule did not carry the fix")
	}
	if results[3].Alert != nil {
		t.Error("location rule must not produce an alert")
	}

	// Battery
	if results[4].Alert == nil || results[4].Alert.Type != models.TypeSystem {
		t.Fatal("battery rule did not produce a system alert")
	}
	if results[4].Alert.Message != "Low battery warning: 15% remaining" {
		t.Errorf("unexpected battery message %q", results[4].Alert.Message)
	}
	if results[4].Alert.Severity != models.SeverityInfo {
		t.Error("battery alert should be info severity")
	}
}

func TestEvaluateReadingAbsentBlocksProduceNothing(t *testing.T) {
	reading := &models.DeviceReading{
		DeviceID:  "helmet-002",
		Timestamp: "2026-08-28T10:00:00Z",
	}

	if results := EvaluateReading(reading); len(results) != 0 {
		t.Errorf("expected no results for a bare reading, got %d", len(results))
	}
}

func TestEvaluateReadingTiredFatigueHasNoAlert(t *testing.T) {
	reading := &models.DeviceReading{
		DeviceID:  "helmet-003",
		HeartRate: floatPtr(110),
	}

	results := EvaluateReading(reading)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if *results[0].Delta.Fatigue != models.FatigueTired {
		t.Errorf("expected tired fatigue, got %q", *results[0].Delta.Fatigue)
	}
	if results[0].Alert != nil {
		t.Error("tired fatigue must not produce an alert")
	}
}

func TestEvaluateReadingHealthyBatteryProducesNothing(t *testing.T) {
	reading := &models.DeviceReading{
		DeviceID:     "helmet-004",
		BatteryLevel: floatPtr(20),
	}

	if results := EvaluateReading(reading); len(results) != 0 {
		t.Errorf("battery at the threshold must not alert, got %d results", len(results))
	}
}
