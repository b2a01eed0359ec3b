package handler

import (
	"net/http"

	"github.com/msomdec/storefront/internal/metrics"
	"github.com/msomdec/storefront/internal/service"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Carts    *service.CartService
	Checkout *service.CheckoutService
	DB       Pinger
	// AuthLimiter throttles register and login per client IP.
	AuthLimiter *service.RateLimiter
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services, cookieSecure bool) {
	authHandler := NewAuthHandler(s.Auth, cookieSecure)
	catalogHandler := NewCatalogHandler(s.Catalog)
	cartHandler := NewCartHandler(s.Carts, s.Checkout, s.Catalog)
	orderHandler := NewOrderHandler(s.Checkout)
	homeHandler := NewHomeHandler(s.Catalog, s.Carts)

	requireAuth := func(h http.HandlerFunc) http.Handler { return RequireAuth(s.Auth, h) }
	limited := func(h http.HandlerFunc) http.Handler { return RateLimit(s.AuthLimiter, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz(s.DB))
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth API.
	mux.Handle("POST /api/auth/register", limited(authHandler.HandleRegister))
	mux.Handle("POST /api/auth/login", limited(authHandler.HandleLogin))
	mux.Handle("POST /api/auth/logout", requireAuth(authHandler.HandleLogout))
	mux.Handle("GET /api/auth/me", requireAuth(authHandler.HandleMe))

	// Catalog API.
	mux.HandleFunc("GET /api/products", catalogHandler.HandleList)
	mux.HandleFunc("GET /api/products/{id}", catalogHandler.HandleGet)

	// Cart API.
	mux.Handle("GET /api/cart", requireAuth(cartHandler.HandleView))
	mux.Handle("POST /api/cart/items", requireAuth(cartHandler.HandleAddItem))
	mux.Handle("DELETE /api/cart/items/{productID}", requireAuth(cartHandler.HandleRemoveItem))
	mux.Handle("DELETE /api/cart", requireAuth(cartHandler.HandleClear))

	// Orders API.
	mux.Handle("POST /api/checkout", requireAuth(orderHandler.HandleCheckout))
	mux.Handle("GET /api/orders", requireAuth(orderHandler.HandleList))
	mux.Handle("GET /api/orders/{id}", requireAuth(orderHandler.HandleGet))

	// HTML pages.
	mux.Handle("GET /{$}", OptionalAuth(s.Auth, http.HandlerFunc(homeHandler.HandleHome)))
	mux.Handle("GET /cart", requireAuth(cartHandler.HandleCartPage))
	mux.Handle("POST /cart/items", requireAuth(cartHandler.HandleAddItemSSE))
	mux.Handle("DELETE /cart/items/{productID}", requireAuth(cartHandler.HandleRemoveItemSSE))
}
