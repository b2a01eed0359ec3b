package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/storefront/internal/domain"
)

// errorResponse describes how a domain error is presented to clients.
type errorResponse struct {
	status  int
	code    string
	message string
	// detail exposes err.Error() instead of message.
	detail bool
}

var errorTable = []struct {
	err  error
	resp errorResponse
}{
	{domain.ErrStorageUnavailable, errorResponse{http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is temporarily unavailable. Please retry.", false}},
	{domain.ErrUnauthenticated, errorResponse{http.StatusUnauthorized, "UNAUTHENTICATED", "Not authenticated.", false}},
	{domain.ErrInvalidCredentials, errorResponse{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password.", false}},
	{domain.ErrUsernameTaken, errorResponse{http.StatusConflict, "USERNAME_TAKEN", "That username is already taken.", false}},
	{domain.ErrProductNotFound, errorResponse{http.StatusNotFound, "PRODUCT_NOT_FOUND", "", true}},
	{domain.ErrInvalidQuantity, errorResponse{http.StatusUnprocessableEntity, "INVALID_QUANTITY", "", true}},
	{domain.ErrEmptyCart, errorResponse{http.StatusConflict, "EMPTY_CART", "Your cart is empty.", false}},
	{domain.ErrCartChanged, errorResponse{http.StatusConflict, "CART_CHANGED", "Your cart changed during checkout. Please review it and try again.", false}},
	{domain.ErrInvalidInput, errorResponse{http.StatusUnprocessableEntity, "INVALID_INPUT", "", true}},
	{domain.ErrNotFound, errorResponse{http.StatusNotFound, "NOT_FOUND", "Not found.", false}},
	{domain.ErrRateLimited, errorResponse{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please slow down.", false}},
}

// publicError resolves err to its client-facing status, code and message.
// Storage failures are checked first so a wrapped driver error never leaks.
// Storage and unknown errors are logged here.
func publicError(r *http.Request, err error) (errorResponse, error) {
	for _, e := range errorTable {
		if !errors.Is(err, e.err) {
			continue
		}
		resp := e.resp
		if resp.detail {
			resp.message = err.Error()
		}
		if resp.status == http.StatusServiceUnavailable {
			slog.Error("storage unavailable", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		return resp, e.err
	}

	slog.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	return errorResponse{http.StatusInternalServerError, "INTERNAL", "An unexpected error occurred. Please try again.", false}, nil
}

// writeDomainError maps err to an HTTP status and JSON error body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	resp, matched := publicError(r, err)
	switch resp.status {
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		w.Header().Set("Retry-After", "1")
	case http.StatusUnauthorized:
		if matched == domain.ErrUnauthenticated {
			w.Header().Set("WWW-Authenticate", `Bearer realm="storefront"`)
		}
	}
	writeError(w, resp.status, resp.code, resp.message)
}
