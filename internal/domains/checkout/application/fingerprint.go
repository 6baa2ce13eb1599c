package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	checkouttypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application/types"
)

type normalizedCheckoutInput struct {
	BuyerID               string                      `json:"buyerId"`
	ShippingAddress       checkouttypes.AddressInput  `json:"shippingAddress"`
	BillingAddress        *checkouttypes.AddressInput `json:"billingAddress"`
	BillingSameAsShipping bool                        `json:"billingSameAsShipping"`
	PaymentMethod         string                      `json:"paymentMethod"`
	Payment               checkouttypes.PaymentInput  `json:"payment"`
	Notes                 string                      `json:"notes"`
}

// FingerprintCheckout builds a deterministic hash of the checkout command,
// excluding the idempotency key itself.
func FingerprintCheckout(input checkouttypes.CheckoutInput) (string, error) {
	normalized := normalizedCheckoutInput{
		BuyerID:               input.BuyerID,
		ShippingAddress:       input.ShippingAddress,
		BillingAddress:        input.BillingAddress,
		BillingSameAsShipping: input.BillingSameAsShipping,
		PaymentMethod:         input.PaymentMethod,
		Payment:               input.Payment,
		Notes:                 input.Notes,
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
