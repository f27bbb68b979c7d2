package handler

import (
	"encoding/json"
	"net/http"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type SOSHandler struct {
	sosService *service.SOSService
	log        *logger.Logger
}

func NewSOSHandler(sosService *service.SOSService, log *logger.Logger) *SOSHandler {
	return &SOSHandler{
		sosService: sosService,
		log:        log,
	}
}

func (h *SOSHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sos", h.Ping).Methods("GET")
	r.HandleFunc("/sos", h.TriggerSOS).Methods("POST")
}

func (h *SOSHandler) Ping(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "SOS endpoint is alive - use POST to trigger alerts",
	})
}

func (h *SOSHandler) TriggerSOS(w http.ResponseWriter, r *http.Request) {
	var req models.SOSRequest
	if r.Body != nil {
		// An empty or missing body is a valid manual SOS.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.sosService.TriggerSOS(r.Context(), req)
	if err != nil {
		h.log.Error("Failed to trigger SOS: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to trigger SOS alert")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "SOS alert triggered successfully",
		"alertId": result.AlertID,
	})
}
