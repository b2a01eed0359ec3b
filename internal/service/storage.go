package service

import (
	"errors"
	"fmt"

	"github.com/msomdec/storefront/internal/domain"
)

// unavailable marks a persistence failure as retryable. The driver error stays
// in the chain for logging; handlers never show it to clients.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// passOr returns err unchanged when it matches one of the known domain errors,
// and wraps it as a storage failure otherwise.
func passOr(op string, err error, known ...error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return unavailable(op, err)
}
