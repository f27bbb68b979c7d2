package handler

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondMissingFields(w http.ResponseWriter, fields []string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:         "Missing required fields",
		MissingFields: fields,
	})
}
