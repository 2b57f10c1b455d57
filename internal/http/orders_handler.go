package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/novamart/storefront/internal/domain"
)

type Orders interface {
	GetOrder(ctx context.Context, owner, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, owner string) ([]*domain.Order, error)
}

type Notifications interface {
	Recent(ctx context.Context, owner string, limit int) ([]*domain.Notification, error)
}

const defaultNotificationLimit = 10

type OrdersHandler struct {
	orders        Orders
	notifications Notifications
	log           *slog.Logger
}

func NewOrdersHandler(orders Orders, notifications Notifications, log *slog.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, notifications: notifications, log: log}
}

// GET /api/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/orders/{orderID}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), getUserIDFromContext(r.Context()), chi.URLParam(r, "orderID"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/notifications?limit=N
func (h *OrdersHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = n
	}

	list, err := h.notifications.Recent(r.Context(), getUserIDFromContext(r.Context()), limit)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
