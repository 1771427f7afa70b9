package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nahidhasan98/changed-files/internal/classifier"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/models"
)

// writeJSON writes a JSON response with the given status code
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("Failed to encode JSON response", err)
	}
}

// writeAppError writes an application error response
func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	appErr := errors.As(err)
	status := appErr.HTTPStatus()

	response := &models.ErrorResponse{
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	}

	// Log the error for internal monitoring
	h.log.With("error_code", appErr.Code).
		With("status_code", status).
		Error(appErr.Message, appErr.Err)

	h.writeJSON(w, response, status)
}

// categoryResults converts a classification result to its wire form
func categoryResults(result classifier.Result) []models.CategoryResult {
	out := make([]models.CategoryResult, len(result))
	for i, o := range result {
		out[i] = models.CategoryResult{Name: o.Category, Changed: o.Changed}
	}
	return out
}
