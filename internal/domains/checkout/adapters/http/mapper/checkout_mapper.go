package mapper

import (
	checkouttypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application/types"
)

// Address is the inbound checkout address payload.
type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// Payment carries non-sensitive payment metadata supplied at checkout.
type Payment struct {
	CardLastFour  string `json:"cardLastFour"`
	CardBrand     string `json:"cardBrand"`
	TransactionID string `json:"transactionId"`
}

// CheckoutRequest is the inbound payload converting the cart into an order.
type CheckoutRequest struct {
	ShippingAddress       Address  `json:"shippingAddress" binding:"required"`
	BillingAddress        *Address `json:"billingAddress"`
	BillingSameAsShipping bool     `json:"billingSameAsShipping"`
	PaymentMethod         string   `json:"paymentMethod" binding:"required"`
	Payment               Payment  `json:"payment"`
	Notes                 string   `json:"notes"`
}

// ToCheckoutInput converts the transport payload into the application command.
func ToCheckoutInput(buyerID, idempotencyKey string, req CheckoutRequest) checkouttypes.CheckoutInput {
	input := checkouttypes.CheckoutInput{
		BuyerID:               buyerID,
		ShippingAddress:       toAddressInput(req.ShippingAddress),
		BillingSameAsShipping: req.BillingSameAsShipping,
		PaymentMethod:         req.PaymentMethod,
		Payment: checkouttypes.PaymentInput{
			CardLastFour:  req.Payment.CardLastFour,
			CardBrand:     req.Payment.CardBrand,
			TransactionID: req.Payment.TransactionID,
		},
		Notes:          req.Notes,
		IdempotencyKey: idempotencyKey,
	}
	if req.BillingAddress != nil {
		billing := toAddressInput(*req.BillingAddress)
		input.BillingAddress = &billing
	}
	return input
}

func toAddressInput(a Address) checkouttypes.AddressInput {
	return checkouttypes.AddressInput{
		Name:    a.Name,
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
		Phone:   a.Phone,
	}
}
