package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/payment"
)

type Checkout interface {
	Checkout(ctx context.Context, owner, methodName string) (string, error)
	Summary(ctx context.Context, owner string) (*domain.CheckoutSummary, error)
}

type PaymentMethods interface {
	MethodInfo(name string) (payment.MethodInfo, error)
}

type CheckoutHandler struct {
	checkout Checkout
	methods  PaymentMethods
	log      *slog.Logger
}

func NewCheckoutHandler(checkout Checkout, methods PaymentMethods, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, methods: methods, log: log}
}

type CheckoutResponseDTO struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type PaymentMethodDTO struct {
	Name                string `json:"name"`
	RequiresCardDetails bool   `json:"requires_card_details"`
}

// GET /api/checkout/summary
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.checkout.Summary(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// POST /api/checkout/process?paymentMethod=cash|card
func (h *CheckoutHandler) Process(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("paymentMethod")
	orderID, err := h.checkout.Checkout(r.Context(), getUserIDFromContext(r.Context()), method)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID: orderID,
		Message: "Order placed successfully",
	})
}

// GET /api/payments/methods/{method}
func (h *CheckoutHandler) PaymentMethod(w http.ResponseWriter, r *http.Request) {
	info, err := h.methods.MethodInfo(chi.URLParam(r, "method"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, PaymentMethodDTO{
		Name:                info.Name,
		RequiresCardDetails: info.RequiresCardDetails,
	})
}
