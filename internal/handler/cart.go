package handler

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
	"github.com/msomdec/storefront/internal/view"
	datastar "github.com/starfederation/datastar-go/datastar"
)

// CartHandler handles cart requests for both the JSON API and the HTML pages.
type CartHandler struct {
	carts    *service.CartService
	checkout *service.CheckoutService
	catalog  *service.CatalogService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *service.CartService, checkout *service.CheckoutService, catalog *service.CatalogService) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout, catalog: catalog}
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// HandleView returns the caller's cart with a price quote.
// GET /api/cart
func (h *CartHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, http.StatusOK)
}

// HandleAddItem adds a product to the caller's cart.
// POST /api/cart/items
// Request:  {"productId":1,"quantity":2}
// Response: the updated cart
func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	if err := h.carts.AddItem(r.Context(), UserFromContext(r.Context()), req.ProductID, req.Quantity); err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeCart(w, r, http.StatusOK)
}

// HandleRemoveItem drops a product's line from the caller's cart.
// DELETE /api/cart/items/{productID}
func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.carts.RemoveItem(r.Context(), UserFromContext(r.Context()), productID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClear empties the caller's cart.
// DELETE /api/cart
func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), UserFromContext(r.Context())); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) writeCart(w http.ResponseWriter, r *http.Request, status int) {
	user := UserFromContext(r.Context())

	cart, err := h.carts.View(r.Context(), user)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var quote *domain.Quote
	if !cart.IsEmpty() {
		quote, err = h.checkout.Quote(r.Context(), user)
		if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
			writeDomainError(w, r, err)
			return
		}
	}

	writeJSON(w, status, map[string]any{
		"cart": toCartDTO(cart, quote),
	})
}

// HandleCartPage renders the caller's cart. When a carted product has
// left the catalog the lines are listed without prices so the shopper can
// remove the missing ones.
// GET /cart
func (h *CartHandler) HandleCartPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	cart, err := h.carts.View(r.Context(), user)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var detail templ.Component
	quote, err := h.checkout.Quote(r.Context(), user)
	switch {
	case err == nil:
		detail = view.CartDetail(quote)
	case errors.Is(err, domain.ErrProductNotFound):
		lines, err := h.unpricedLines(r, cart)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		detail = view.CartUnpriced(lines)
	default:
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view.Page("Cart", user.Username, view.CartSummary(cart.ItemCount()), detail).Render(r.Context(), w)
}

func (h *CartHandler) unpricedLines(r *http.Request, cart *domain.Cart) ([]view.UnpricedLine, error) {
	lines := make([]view.UnpricedLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		line := view.UnpricedLine{ProductID: l.ProductID, Quantity: l.Quantity}
		p, err := h.catalog.Get(r.Context(), l.ProductID)
		switch {
		case err == nil:
			line.Name = p.Name
			line.Available = true
		case !errors.Is(err, domain.ErrProductNotFound):
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// HandleAddItemSSE is the datastar add-to-cart action. It reads the
// productId and quantity signals and patches #cart-summary. Failures are
// patched into #cart-error.
// POST /cart/items
func (h *CartHandler) HandleAddItemSSE(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var signals addItemRequest
	if err := datastar.ReadSignals(r, &signals); err != nil {
		patchCartError(datastar.NewSSE(w, r), "Request body is not valid.")
		return
	}
	if signals.Quantity == 0 {
		signals.Quantity = 1
	}

	if err := h.carts.AddItem(r.Context(), user, signals.ProductID, signals.Quantity); err != nil {
		resp, _ := publicError(r, err)
		patchCartError(datastar.NewSSE(w, r), resp.message)
		return
	}
	cart, err := h.carts.View(r.Context(), user)
	if err != nil {
		resp, _ := publicError(r, err)
		patchCartError(datastar.NewSSE(w, r), resp.message)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.CartSummary(cart.ItemCount()),
		datastar.WithSelectorID("cart-summary"),
		datastar.WithModeInner(),
	)
	patchCartError(sse, "")
}

// HandleRemoveItemSSE is the datastar remove action on the cart page. The
// page is reloaded afterwards so totals are recomputed.
// DELETE /cart/items/{productID}
func (h *CartHandler) HandleRemoveItemSSE(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err == nil {
		err = h.carts.RemoveItem(r.Context(), UserFromContext(r.Context()), productID)
	}

	sse := datastar.NewSSE(w, r)
	if err != nil {
		resp, _ := publicError(r, err)
		patchCartError(sse, resp.message)
		return
	}
	sse.Redirect("/cart")
}

func patchCartError(sse *datastar.ServerSentEventGenerator, message string) {
	sse.PatchElementTempl(
		view.CartError(message),
		datastar.WithSelectorID("cart-error"),
		datastar.WithModeInner(),
	)
}
