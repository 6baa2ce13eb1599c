package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

var (
	// ErrNotParty signals the actor is neither the buyer nor a supplier on
	// the order. Callers surface it as a bare denial; no detail about the
	// order leaks past this error.
	ErrNotParty = errors.New("not a party to this order")
	// ErrInvalidInput signals the request violated an order invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidBuyer) ||
		errors.Is(err, domain.ErrEmptyItems) ||
		errors.Is(err, domain.ErrInvalidItem) ||
		errors.Is(err, domain.ErrInvalidAmounts) ||
		errors.Is(err, domain.ErrInvalidRefundAmount) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	// State errors (invalid transition, cannot cancel/refund) pass through
	// untouched; the HTTP layer names the rejected operation from them.
	return err
}
