package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/novamart/storefront/internal/notification"
	"github.com/novamart/storefront/internal/payment"
	"github.com/novamart/storefront/internal/repository"
	"github.com/novamart/storefront/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, MessageResponse{Message: message})
}

// handleServiceError converts domain errors into HTTP status codes.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		status  int
		code    string
		message = err.Error()
	)

	switch {
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProductID),
		errors.Is(err, service.ErrUnsupportedPaymentMethod),
		errors.Is(err, payment.ErrUnsupportedMethod),
		errors.Is(err, notification.ErrInvalidLimit),
		errors.Is(err, notification.ErrInvalidOrderID):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, service.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrPaymentDeclined):
		status, code, message = http.StatusPaymentRequired, "payment_declined", "checkout failed, try again"
	case errors.Is(err, service.ErrUnauthorized):
		status, code = http.StatusForbidden, "permission_denied"
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, service.ErrLineNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, notification.ErrOrderNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrProductUnavailable):
		status, code = http.StatusConflict, "product_unavailable"
	case errors.Is(err, service.ErrEmptyCart):
		status, code, message = http.StatusUnprocessableEntity, "cart_empty", "cart empty"
	default:
		status, code, message = http.StatusInternalServerError, "internal_error", "internal server error"
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}

	respondError(w, status, code, message)
}
