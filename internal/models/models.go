// internal/models/models.go

package models

import (
	"time"
)

// Location is a GPS fix reported by a helmet.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Vector3 carries one accelerometer or gyroscope sample. Missing axes
// decode to zero.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DeviceReading is one inbound telemetry payload from a helmet. Only
// deviceId, timestamp and location are required; every sensor block is
// optional and rules fire only for the blocks that are present.
type DeviceReading struct {
	DeviceID      string    `json:"deviceId"`
	Timestamp     string    `json:"timestamp"`
	Location      *Location `json:"location"`
	HelmetStatus  *bool     `json:"helmetStatus,omitempty"`
	Accelerometer *Vector3  `json:"accelerometer,omitempty"`
	Gyroscope     *Vector3  `json:"gyroscope,omitempty"`
	HeartRate     *float64  `json:"heartRate,omitempty"`
	BatteryLevel  *float64  `json:"batteryLevel,omitempty"`
}

// Status is the single current-state snapshot for the fleet. It always
// exists (bootstrapped with defaults) and is only ever partially merged.
type Status struct {
	Helmet     string    `json:"helmet"`
	Accident   bool      `json:"accident"`
	Fatigue    string    `json:"fatigue"`
	Location   *Location `json:"location"`
	LastUpdate string    `json:"lastUpdate"`
}

// StatusUpdate is a partial merge against Status. Nil fields are left
// untouched; lastUpdate is stamped by the repository on every write.
type StatusUpdate struct {
	Helmet   *string
	Accident *bool
	Fatigue  *string
	Location *Location
}

// DefaultStatus is the record written once on first boot.
func DefaultStatus() Status {
	return Status{
		Helmet:     HelmetConnected,
		Accident:   false,
		Fatigue:    FatigueNormal,
		Location:   nil,
		LastUpdate: time.Now().UTC().Format(time.RFC3339),
	}
}

// DeviceDataResponse is returned by POST /device-data.
type DeviceDataResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	AlertsTriggered int    `json:"alertsTriggered"`
}

// AlertsResponse is returned by GET /alerts.
type AlertsResponse struct {
	Alerts []Alert `json:"alerts"`
	Status Status  `json:"status"`
}

// CreateAlertRequest is the body of POST /alerts.
type CreateAlertRequest struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// SOSRequest is the body of POST /sos. Every field is optional; an
// empty body is a valid manual trigger.
type SOSRequest struct {
	Type      string    `json:"type"`
	Location  *Location `json:"location"`
	Timestamp string    `json:"timestamp"`
}

// SOSResult is what the SOS service hands back to its caller. The
// notification outcome is data, not an error: the alert is already
// durable by the time dispatch is attempted.
type SOSResult struct {
	AlertID      string         `json:"alertId"`
	Notification DispatchResult `json:"notification"`
}

// DispatchResult is the structured outcome of a notification send.
type DispatchResult struct {
	Success     bool   `json:"success"`
	ProviderRef string `json:"providerRef,omitempty"`
	Error       string `json:"error,omitempty"`
}

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	DeviceID  string `json:"deviceId"`
	DeviceKey string `json:"deviceKey"`
}

// TokenResponse carries an issued device JWT.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Services  struct {
		Database bool `json:"database"`
		MQTT     bool `json:"mqtt,omitempty"`
	} `json:"services"`
}
