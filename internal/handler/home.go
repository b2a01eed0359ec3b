package handler

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/msomdec/storefront/internal/service"
	"github.com/msomdec/storefront/internal/view"
)

// HomeHandler renders the product list page.
type HomeHandler struct {
	catalog *service.CatalogService
	carts   *service.CartService
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(catalog *service.CatalogService, carts *service.CartService) *HomeHandler {
	return &HomeHandler{catalog: catalog, carts: carts}
}

// HandleHome renders the catalog. Signed-in users also see their cart summary
// and add-to-cart buttons.
// GET /
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	user := UserFromContext(r.Context())
	username := ""
	var summary templ.Component
	if user != nil {
		cart, err := h.carts.View(r.Context(), user)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		username = user.Username
		summary = view.CartSummary(cart.ItemCount())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	view.Page("Products", username, summary, view.ProductList(products, user != nil)).Render(r.Context(), w)
}
