package handler

import (
	"encoding/json"
	"net/http"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"
	"HelmetMonitorAPI/internal/service"

	"github.com/gorilla/mux"
)

type AlertHandler struct {
	alertService  service.IAlertService
	reportService *service.ReportService
	log           *logger.Logger
}

func NewAlertHandler(alertService service.IAlertService, reportService *service.ReportService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		alertService:  alertService,
		reportService: reportService,
		log:           log,
	}
}

func (h *AlertHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/alerts", h.GetAlerts).Methods("GET")
	r.HandleFunc("/alerts", h.CreateAlert).Methods("POST")
	r.HandleFunc("/alerts", h.ClearAlerts).Methods("DELETE")
	r.HandleFunc("/alerts/report", h.DownloadReport).Methods("GET")
}

// GetAlerts returns the latest alerts (newest first) and current status.
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	data, err := h.alertService.GetLatestAlerts(r.Context())
	if err != nil {
		h.log.Error("Failed to fetch alerts: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch alerts")
		return
	}

	respondJSON(w, http.StatusOK, data)
}

// CreateAlert adds a manual alert. Type and message are required;
// severity defaults to info.
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Type == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "Type and message are required")
		return
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityInfo
	}

	alert, err := h.alertService.AddAlert(r.Context(), models.AlertDraft{
		Type:     req.Type,
		Message:  req.Message,
		Severity: severity,
	})
	if err != nil {
		h.log.Error("Failed to add alert: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to add alert")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"alert":   alert,
	})
}

func (h *AlertHandler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	if err := h.alertService.ClearAlerts(r.Context()); err != nil {
		h.log.Error("Failed to clear alerts: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to clear alerts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "alerts cleared"})
}

func (h *AlertHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.GenerateAlertReport(r.Context())
	if err != nil {
		h.log.Error("Failed to generate alert report: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="alert-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(report)
}
