package handler

import (
	"context"
	"net/http"
	"time"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"

	"github.com/gorilla/mux"
)

// HealthChecker is anything whose availability the probe reports.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db        HealthChecker
	mqtt      HealthChecker
	startedAt time.Time
	log       *logger.Logger
}

// NewHealthHandler builds the probe handler. Either checker may be nil
// when the corresponding collaborator is not configured.
func NewHealthHandler(db, mqtt HealthChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		mqtt:      mqtt,
		startedAt: time.Now(),
		log:       log,
	}
}

func (h *HealthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/health/live", h.Liveness).Methods("GET")
	r.HandleFunc("/health/ready", h.Readiness).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	response.Services.Database = h.db == nil || h.db.Health(ctx) == nil
	response.Services.MQTT = h.mqtt == nil || h.mqtt.Health(ctx) == nil

	statusCode := http.StatusOK
	if !response.Services.Database || !response.Services.MQTT {
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Health check degraded - DB: %v, MQTT: %v",
			response.Services.Database, response.Services.MQTT)
	}

	respondJSON(w, statusCode, response)
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			h.log.Warn("Readiness check failed: %v", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
