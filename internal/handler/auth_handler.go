package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/middleware"
	"HelmetMonitorAPI/internal/models"

	"github.com/gorilla/mux"
)

type AuthHandler struct {
	auth *middleware.JWTAuth
	log  *logger.Logger
}

func NewAuthHandler(auth *middleware.JWTAuth, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		log:  log,
	}
}

func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/token", h.IssueToken).Methods("POST")
}

// IssueToken exchanges a device id plus shared device key for a JWT.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.DeviceID == "" || req.DeviceKey == "" {
		respondError(w, http.StatusBadRequest, "deviceId and deviceKey are required")
		return
	}

	if !h.auth.VerifyDeviceKey(req.DeviceKey) {
		h.log.Warn("Rejected token request for device %s", req.DeviceID)
		respondError(w, http.StatusUnauthorized, "Invalid device key")
		return
	}

	token, expiresAt, err := h.auth.GenerateToken(req.DeviceID)
	if err != nil {
		h.log.Error("Failed to issue token for %s: %v", req.DeviceID, err)
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, models.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
