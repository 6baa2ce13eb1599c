package application

import "errors"

var (
	// ErrIncompleteAddress signals the shipping address is missing street or city.
	ErrIncompleteAddress = errors.New("shipping address must include street and city")
	// ErrMissingPaymentMethod signals no payment method was supplied.
	ErrMissingPaymentMethod = errors.New("payment method is required")
	// ErrInvalidPaymentMethod signals the payment method is not accepted.
	ErrInvalidPaymentMethod = errors.New("payment method is not accepted")
	// ErrEmptyCart signals the buyer has no cart or an empty one.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductUnavailable signals a cart line's product vanished or went
	// inactive between add-to-cart and checkout. The whole checkout aborts.
	ErrProductUnavailable = errors.New("product unavailable")
)
