package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/inkwell/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondDomainError translates a service error into an HTTP status.
// Unexpected errors are logged and surfaced generically.
func (h *BaseHandler) RespondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrors validation.Errors
	if errors.As(err, &fieldErrors) {
		h.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": fieldErrors,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrDuplicateEmail):
		h.RespondError(w, http.StatusConflict, models.ErrDuplicateEmail.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		h.RespondError(w, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())
	case errors.Is(err, models.ErrAccountDisabled):
		h.RespondError(w, http.StatusForbidden, models.ErrAccountDisabled.Error())
	case errors.Is(err, models.ErrForbidden):
		h.RespondError(w, http.StatusForbidden, models.ErrForbidden.Error())
	case errors.Is(err, models.ErrUserNotFound):
		h.RespondError(w, http.StatusNotFound, models.ErrUserNotFound.Error())
	case errors.Is(err, models.ErrPostNotFound):
		h.RespondError(w, http.StatusNotFound, models.ErrPostNotFound.Error())
	case errors.Is(err, models.ErrConcurrencyConflict):
		h.RespondError(w, http.StatusConflict, models.ErrConcurrencyConflict.Error())
	default:
		h.Logger.Error("unexpected error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
