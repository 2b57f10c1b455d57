package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/service"
)

type Cart interface {
	AddItem(ctx context.Context, owner string, productID int64, quantity int) (*service.AddResult, error)
	SetQuantity(ctx context.Context, owner string, productID int64, quantity int) error
	RemoveItem(ctx context.Context, owner string, productID int64) error
	SetLineQuantity(ctx context.Context, owner, lineID string, quantity int) error
	RemoveLine(ctx context.Context, owner, lineID string) error
	List(ctx context.Context, owner string) ([]domain.CartLineView, error)
	Count(ctx context.Context, owner string) (int, error)
	Empty(ctx context.Context, owner string) error
}

type CartHandler struct {
	cart Cart
	log  *slog.Logger
}

func NewCartHandler(cart Cart, log *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, log: log}
}

type CountResponse struct {
	Count int `json:"count"`
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cart.List(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if lines == nil {
		lines = []domain.CartLineView{}
	}
	respondJSON(w, http.StatusOK, lines)
}

// GET /api/cart/count
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.cart.Count(r.Context(), getUserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, CountResponse{Count: n})
}

// POST /api/cart/add/{productID}?quantity=N
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	quantity, ok := parseQuantity(w, r, 1)
	if !ok {
		return
	}

	res, err := h.cart.AddItem(r.Context(), getUserIDFromContext(r.Context()), productID, quantity)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if res.Created {
		respondMessage(w, http.StatusCreated, fmt.Sprintf("%s added to cart", res.Product.Name))
		return
	}
	respondMessage(w, http.StatusOK, fmt.Sprintf("%s quantity updated to %d", res.Product.Name, res.Line.Quantity))
}

// PUT /api/cart/update/{productID}?quantity=N
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	quantity, ok := parseQuantity(w, r, -1)
	if !ok {
		return
	}

	if err := h.cart.SetQuantity(r.Context(), getUserIDFromContext(r.Context()), productID, quantity); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if quantity <= 0 {
		respondMessage(w, http.StatusOK, "Item removed from cart")
		return
	}
	respondMessage(w, http.StatusOK, "Cart updated successfully")
}

// DELETE /api/cart/remove/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	if err := h.cart.RemoveItem(r.Context(), getUserIDFromContext(r.Context()), productID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Item removed from cart")
}

// PUT /api/cart/items/{lineID}?quantity=N
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	quantity, ok := parseQuantity(w, r, -1)
	if !ok {
		return
	}
	lineID := chi.URLParam(r, "lineID")
	if err := h.cart.SetLineQuantity(r.Context(), getUserIDFromContext(r.Context()), lineID, quantity); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Cart updated successfully")
}

// DELETE /api/cart/items/{lineID}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	if err := h.cart.RemoveLine(r.Context(), getUserIDFromContext(r.Context()), lineID); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Item removed from cart")
}

// DELETE /api/cart/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Empty(r.Context(), getUserIDFromContext(r.Context())); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Cart cleared successfully")
}

// parseQuantity reads the quantity query parameter. A negative def makes it required.
func parseQuantity(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("quantity")
	if raw == "" {
		if def < 0 {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
			return 0, false
		}
		return def, true
	}
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer")
		return 0, false
	}
	return quantity, true
}
