package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCartChanged        = errors.New("cart changed during checkout")
	ErrRateLimited        = errors.New("rate limited")

	// ErrStorageUnavailable marks a failure of the persistence layer. It is the
	// only error a caller may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
