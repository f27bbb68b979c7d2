// internal/service/rules.go
//
// Pure threshold rules mapping one device reading to status deltas and
// candidate alerts. Rules are independent, all evaluated against the same
// reading, and returned in a fixed order so that status-merge visibility
// is reproducible.

package service

import (
	"fmt"
	"math"

	"HelmetMonitorAPI/internal/models"
)

const (
	// AccidentThreshold is the acceleration magnitude (m/s²) above which a
	// reading counts as an accident.
	AccidentThreshold = 15.0

	// LowBatteryThreshold is the battery percentage below which a low
	// battery alert fires.
	LowBatteryThreshold = 20.0
)

// RuleResult is one rule's outcome for a reading: a status delta applied
// unconditionally, and an optional candidate alert gated by the debounce
// ledger under DebounceKey. Notify marks kinds that additionally dispatch
// an emergency notification.
type RuleResult struct {
	Delta       models.StatusUpdate
	Alert       *models.AlertDraft
	DebounceKey string
	Notify      bool
}

// EvaluateReading runs every rule against the reading in the fixed order
// helmet, accident, fatigue, location, battery. Rules whose sensor block
// is absent produce nothing.
func EvaluateReading(reading *models.DeviceReading) []RuleResult {
	var results []RuleResult

	if reading.HelmetStatus != nil {
		helmet := models.HelmetConnected
		if !*reading.HelmetStatus {
			helmet = models.HelmetDisconnected
		}

		result := RuleResult{Delta: models.StatusUpdate{Helmet: &helmet}}
		if !*reading.HelmetStatus {
			result.Alert = &models.AlertDraft{
				Type:     models.TypeHelmet,
				Message:  "Helmet disconnected - check device connection",
				Severity: models.SeverityWarning,
				DeviceID: reading.DeviceID,
			}
			result.DebounceKey = models.DebounceHelmetDisconnect
		}
		results = append(results, result)
	}

	if reading.Accelerometer != nil || reading.Gyroscope != nil {
		detected := DetectAccident(reading.Accelerometer, reading.Gyroscope)

		result := RuleResult{Delta: models.StatusUpdate{Accident: &detected}}
		if detected {
			result.Alert = &models.AlertDraft{
				Type:     models.TypeAccident,
				Message:  "ACCIDENT DETECTED - Emergency protocols activated",
				Severity: models.SeverityCritical,
				DeviceID: reading.DeviceID,
				Location: reading.Location,
			}
			result.DebounceKey = models.DebounceAccident
			result.Notify = true
		}
		results = append(results, result)
	}

	if reading.HeartRate != nil {
		fatigue := DetectFatigue(*reading.HeartRate)

		result := RuleResult{Delta: models.StatusUpdate{Fatigue: &fatigue}}
		if fatigue == models.FatigueCritical {
			result.Alert = &models.AlertDraft{
				Type:     models.TypeFatigue,
				Message:  "Critical fatigue detected - immediate rest required",
				Severity: models.SeverityWarning,
				DeviceID: reading.DeviceID,
			}
			result.DebounceKey = models.DebounceFatigueCritical
		}
		results = append(results, result)
	}

	if reading.Location != nil {
		results = append(results, RuleResult{
			Delta: models.StatusUpdate{Location: reading.Location},
		})
	}

	if reading.BatteryLevel != nil && *reading.BatteryLevel < LowBatteryThreshold {
		results = append(results, RuleResult{
			Alert: &models.AlertDraft{
				Type:     models.TypeSystem,
				Message:  fmt.Sprintf("Low battery warning: %g%% remaining", *reading.BatteryLevel),
				Severity: models.SeverityInfo,
				DeviceID: reading.DeviceID,
			},
			DebounceKey: models.DebounceLowBattery,
		})
	}

	return results
}

// DetectAccident reports whether the accelerometer magnitude exceeds the
// accident threshold. Gyroscope presence triggers evaluation but its
// values are not part of the magnitude calculation.
func DetectAccident(accel, gyro *models.Vector3) bool {
	if accel == nil {
		return false
	}

	magnitude := math.Sqrt(accel.X*accel.X + accel.Y*accel.Y + accel.Z*accel.Z)
	return magnitude > AccidentThreshold
}

// DetectFatigue maps a heart rate to a fatigue level using fixed bands.
func DetectFatigue(heartRate float64) string {
	if heartRate <= 0 {
		return models.FatigueNormal
	}

	if heartRate < 50 || heartRate > 120 {
		return models.FatigueCritical
	}
	if heartRate < 60 || heartRate > 100 {
		return models.FatigueTired
	}

	return models.FatigueNormal
}
