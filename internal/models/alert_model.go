package models

// Alert constants
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	TypeHelmet   = "helmet"
	TypeAccident = "accident"
	TypeFatigue  = "fatigue"
	TypeSystem   = "system"
	TypeSOS      = "sos"

	HelmetConnected    = "connected"
	HelmetDisconnected = "disconnected"

	FatigueNormal   = "normal"
	FatigueTired    = "tired"
	FatigueCritical = "critical"
)

// Debounce keys, one per alert kind
const (
	DebounceHelmetDisconnect = "helmet_disconnect"
	DebounceAccident         = "accident"
	DebounceFatigueCritical  = "fatigue_critical"
	DebounceLowBattery       = "low_battery"
)

// Alert is the persisted record of a detected safety event. Alerts are
// immutable after creation; the only deletion path is retention trimming
// once the stored count passes the cap.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp string    `json:"timestamp"`
	DeviceID  string    `json:"deviceId,omitempty"`
	Location  *Location `json:"location,omitempty"`
}

// AlertDraft is an alert before the repository assigns its id and
// defaults the timestamp.
type AlertDraft struct {
	Type      string
	Message   string
	Severity  string
	Timestamp string
	DeviceID  string
	Location  *Location
}

// Notification is the payload handed to the dispatcher.
type Notification struct {
	Type     string
	Message  string
	Location *Location
	DeviceID string
	AlertID  string
}
