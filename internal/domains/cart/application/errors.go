package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
)

var (
	// ErrInvalidInput signals the request violated a cart invariant.
	ErrInvalidInput = errors.New("invalid cart input")
	// ErrProductUnavailable signals the product does not exist or is not purchasable.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrBelowMinQuantity signals the resulting line quantity is under the product's minimum order quantity.
	ErrBelowMinQuantity = errors.New("quantity below minimum order quantity")
	// ErrInsufficientStock signals the requested quantity exceeds the available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidOwner) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrInvalidCurrency) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
