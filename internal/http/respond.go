package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_bakery/internal/cart"
	"github.com/fjod/go_bakery/internal/catalog"
	"github.com/fjod/go_bakery/internal/checkout"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// FieldErrorsResponse carries per-field validation messages for the form.
type FieldErrorsResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Errors map[string]string `json:"errors"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain errors to HTTP statuses.
func handleError(w http.ResponseWriter, err error) {
	var fe checkout.FieldErrors
	if errors.As(err, &fe) {
		respondJSON(w, http.StatusUnprocessableEntity, FieldErrorsResponse{
			Error:  "order is invalid",
			Code:   "validation_failed",
			Errors: fe,
		})
		return
	}

	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidPrice),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, checkout.ErrInvalidDeliveryMode):
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, checkout.ErrPaymentMethodNotAllowed):
		respondError(w, http.StatusUnprocessableEntity, "payment_method_not_allowed", err.Error())
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrSubmissionFailed),
		errors.Is(err, cart.ErrPersistenceUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	default:
		zap.L().Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
