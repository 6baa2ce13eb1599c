package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	cartports "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
	catalogports "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/ports"
	checkouttypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application/types"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"
	ordersapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application"
	orderstypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
)

// Policy carries the pricing inputs of checkout. Tax rate and shipping cost
// are deployment configuration, not business constants.
type Policy struct {
	TaxRate      float64
	ShippingCost float64
}

// DefaultPolicy matches the launch configuration: 10% tax, free shipping.
var DefaultPolicy = Policy{TaxRate: 0.10, ShippingCost: 0}

// Service is the checkout orchestrator. It validates the cart against the
// live catalog, snapshots the cart's stored prices into order items, and
// commits the new order together with the cart emptying through the atomic
// store. Payment is modeled as already authorized upstream: the order is
// born confirmed and paid.
type Service struct {
	carts       cartports.Repository
	catalog     catalogports.Catalog
	orders      ordersports.Repository
	store       ports.Store
	idempotency ports.IdempotencyStore
	policy      Policy
}

type Option func(*Service)

// WithPolicy overrides the pricing policy.
func WithPolicy(policy Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithIdempotencyStore enables idempotency-key replay for checkout retries.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

func NewService(carts cartports.Repository, catalog catalogports.Catalog, orders ordersports.Repository, store ports.Store, opts ...Option) *Service {
	s := &Service{
		carts:   carts,
		catalog: catalog,
		orders:  orders,
		store:   store,
		policy:  DefaultPolicy,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Checkout converts the buyer's cart into an immutable order. Either the
// order is persisted and the cart emptied, or neither happens.
func (s *Service) Checkout(ctx context.Context, input checkouttypes.CheckoutInput) (*orderstypes.OrderProjection, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var requestHash string
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" && s.idempotency != nil {
		hash, err := FingerprintCheckout(input)
		if err != nil {
			return nil, err
		}
		requestHash = hash
		if replayed, err := s.replay(ctx, key, hash); err != nil || replayed != nil {
			return replayed, err
		}
	}

	cart, err := s.carts.GetByOwner(ctx, input.BuyerID)
	if err != nil {
		if errors.Is(err, cartports.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if cart.Empty() {
		return nil, ErrEmptyCart
	}

	now := time.Now().UTC()
	items := make([]ordersdomain.Item, 0, len(cart.Items))
	subtotal := 0.0
	for _, line := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalogports.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductID)
			}
			return nil, err
		}
		if !product.Purchasable() {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductID)
		}
		// The cart's stored price is authoritative here: it locks in the
		// price the buyer saw when adding the line, not the live price.
		items = append(items, ordersdomain.Item{
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			SupplierID:  product.SupplierID,
		})
		subtotal += line.Subtotal()
	}

	tax := subtotal * s.policy.TaxRate
	shipping := s.policy.ShippingCost
	total := subtotal + tax + shipping

	shippingAddr := toAddress(input.ShippingAddress)
	billingAddr := shippingAddr
	if !input.BillingSameAsShipping && input.BillingAddress != nil {
		billingAddr = toAddress(*input.BillingAddress)
	}

	order := &ordersdomain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     NewOrderNumber(now),
		BuyerID:         input.BuyerID,
		Items:           items,
		ShippingAddress: shippingAddr,
		BillingAddress:  billingAddr,
		PaymentMethod:   ordersdomain.PaymentMethod(input.PaymentMethod),
		PaymentDetails: ordersdomain.PaymentDetails{
			CardLastFour:  input.Payment.CardLastFour,
			CardBrand:     input.Payment.CardBrand,
			TransactionID: input.Payment.TransactionID,
		},
		Status:        ordersdomain.StatusConfirmed,
		PaymentStatus: ordersdomain.PaymentPaid,
		Currency:      string(cart.Currency),
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		Tax:           tax,
		TotalAmount:   total,
		Notes:         input.Notes,
	}
	order.AppendCreated("order created from cart", input.BuyerID, now)
	if err := order.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.store.CreateOrderAndClearCart(ctx, order, cart.Owner)
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(input.IdempotencyKey); key != "" && s.idempotency != nil {
		if _, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: requestHash,
			OrderID:     saved.ID,
		}); err != nil {
			return nil, err
		}
	}
	return ordersapp.BuyerView(saved), nil
}

// replay returns the previously created order when the key is known with the
// same request hash, ErrIdempotencyConflict when the payload differs, or
// (nil, nil) when the key is new.
func (s *Service) replay(ctx context.Context, key, hash string) (*orderstypes.OrderProjection, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != hash {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := s.orders.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	return ordersapp.BuyerView(order), nil
}

// NewOrderNumber builds a unique human-readable order number: a UTC
// timestamp plus a random suffix.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), suffix)
}

func validateInput(input checkouttypes.CheckoutInput) error {
	if strings.TrimSpace(input.ShippingAddress.Street) == "" || strings.TrimSpace(input.ShippingAddress.City) == "" {
		return ErrIncompleteAddress
	}
	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		return ErrMissingPaymentMethod
	}
	if !ordersdomain.IsValidPaymentMethod(ordersdomain.PaymentMethod(method)) {
		return fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, method)
	}
	return nil
}

func toAddress(input checkouttypes.AddressInput) ordersdomain.Address {
	return ordersdomain.Address{
		Name:    input.Name,
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		Zip:     input.Zip,
		Country: input.Country,
		Phone:   input.Phone,
	}
}

var _ ports.Service = (*Service)(nil)
