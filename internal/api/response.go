package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/vladimiradmaev/health-tracker/internal/errors"
	"github.com/vladimiradmaev/health-tracker/internal/logger"
)

type errorResponse struct {
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError logs err by severity and answers with its mapped status.
// Internal details never reach the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.errors.Handle(r.Context(), err)

	status := apperrors.StatusCode(err)
	resp := errorResponse{Message: http.StatusText(status)}

	if appErr, ok := apperrors.AsAppError(err); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			resp.Message = "Validation failed"
			resp.FieldErrors = appErr.Fields
		case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeSourceUnavailable:
			resp.Message = appErr.Message
		}
	}
	writeJSON(w, status, resp)
}
