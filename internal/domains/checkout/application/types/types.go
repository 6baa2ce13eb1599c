// Package types holds the transport-neutral checkout command shapes.
package types

// AddressInput is the structured address supplied at checkout.
type AddressInput struct {
	Name    string
	Street  string
	City    string
	State   string
	Zip     string
	Country string
	Phone   string
}

// PaymentInput carries only non-sensitive payment metadata. Payment
// authorization happens upstream; this core never sees full card data.
type PaymentInput struct {
	CardLastFour  string
	CardBrand     string
	TransactionID string
}

// CheckoutInput is the command that converts the buyer's cart into an order.
type CheckoutInput struct {
	BuyerID               string
	ShippingAddress       AddressInput
	BillingAddress        *AddressInput
	BillingSameAsShipping bool
	PaymentMethod         string
	Payment               PaymentInput
	Notes                 string
	// IdempotencyKey lets clients retry a checkout safely. Empty disables
	// replay protection for the request.
	IdempotencyKey string
}
