package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

var requiredReadingFields = []string{"deviceId", "timestamp", "lat", "lng"}

type DeviceHandler struct {
	deviceService *service.DeviceService
	log           *logger.Logger
}

func NewDeviceHandler(deviceService *service.DeviceService, log *logger.Logger) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		log:           log,
	}
}

func (h *DeviceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/device-data", h.IngestDeviceData).Methods("POST")
}

// IngestDeviceData receives one telemetry payload from a helmet.
// Validation happens before any store mutation and names the missing
// fields in the rejection.
func (h *DeviceHandler) IngestDeviceData(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reading, missing, err := ParseDeviceReading(raw)
	if len(missing) > 0 {
		respondMissingFields(w, missing)
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.deviceService.ProcessDeviceData(r.Context(), reading)
	if err != nil {
		h.log.Error("Failed to process device data: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to process device data")
		return
	}

	respondJSON(w, http.StatusOK, models.DeviceDataResponse{
		Success:         true,
		Message:         "Device data processed successfully",
		AlertsTriggered: result.AlertsTriggered,
	})
}

// ParseDeviceReading validates the required fields, coerces lat/lng to
// numbers and extracts the optional sensor blocks.
func ParseDeviceReading(raw map[string]interface{}) (*models.DeviceReading, []string, error) {
	var missing []string
	for _, field := range requiredReadingFields {
		if value, ok := raw[field]; !ok || value == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, missing, nil
	}

	lat, err := coerceFloat(raw["lat"])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid lat: %v", raw["lat"])
	}
	lng, err := coerceFloat(raw["lng"])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid lng: %v", raw["lng"])
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid payload: %w", err)
	}

	var sensors struct {
		HelmetStatus  *bool           `json:"helmetStatus"`
		Accelerometer *models.Vector3 `json:"accelerometer"`
		Gyroscope     *models.Vector3 `json:"gyroscope"`
		HeartRate     *float64        `json:"heartRate"`
		BatteryLevel  *float64        `json:"batteryLevel"`
	}
	if err := json.Unmarshal(payload, &sensors); err != nil {
		return nil, nil, fmt.Errorf("invalid sensor data: %w", err)
	}

	reading := &models.DeviceReading{
		DeviceID:      coerceString(raw["deviceId"]),
		Timestamp:     coerceString(raw["timestamp"]),
		Location:      &models.Location{Lat: lat, Lng: lng},
		HelmetStatus:  sensors.HelmetStatus,
		Accelerometer: sensors.Accelerometer,
		Gyroscope:     sensors.Gyroscope,
		HeartRate:     sensors.HeartRate,
		BatteryLevel:  sensors.BatteryLevel,
	}

	return reading, nil, nil
}

func coerceFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("not a number")
	}
}

func coerceString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
