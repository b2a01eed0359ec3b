package handler

import (
	"net/http"

	"github.com/msomdec/storefront/internal/service"
)

// OrderHandler places orders and serves order history.
type OrderHandler struct {
	checkout *service.CheckoutService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(checkout *service.CheckoutService) *OrderHandler {
	return &OrderHandler{checkout: checkout}
}

// HandleCheckout turns the caller's cart into an order.
// POST /api/checkout
// Request:  {"address":"...","paymentMode":"..."}
// Response: 201 {"order": {...}}
func (h *OrderHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address     string `json:"address"`
		PaymentMode string `json:"paymentMode"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	order, err := h.checkout.Checkout(r.Context(), UserFromContext(r.Context()), req.Address, req.PaymentMode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order": toOrderDTO(order),
	})
}

// HandleList returns the caller's orders, newest first.
// GET /api/orders
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.checkout.ListOrders(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": toOrderDTOs(orders),
	})
}

// HandleGet returns one of the caller's orders.
// GET /api/orders/{id}
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	order, err := h.checkout.GetOrder(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order": toOrderDTO(order),
	})
}
