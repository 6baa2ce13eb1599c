package domain

import (
	"errors"
	"strings"
	"time"
)

// Currency enumerates the settlement currencies the marketplace accepts.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// DefaultCurrency is applied when a cart is created without an explicit currency.
const DefaultCurrency = CurrencyUSD

// GuestOwnerPrefix marks cart owner keys that belong to anonymous sessions.
const GuestOwnerPrefix = "guest:"

var (
	ErrInvalidOwner    = errors.New("cart owner is required")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidCurrency = errors.New("currency is not supported")
	ErrLineNotFound    = errors.New("item not found in cart")
)

// Line is one product entry within a cart.
type Line struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	AddedAt   time.Time
}

// Subtotal returns the line contribution to the cart total.
func (l Line) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Cart is the per-owner mutable collection of candidate order lines.
// Lines are unique by product id. TotalItems and TotalAmount are derived
// and recomputed by every mutator before the aggregate is persisted.
type Cart struct {
	Owner       string
	Items       []Line
	TotalItems  int
	TotalAmount float64
	Currency    Currency
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCart constructs an empty cart for the owner key.
func NewCart(owner string, currency Currency) (*Cart, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, ErrInvalidOwner
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if !isValidCurrency(currency) {
		return nil, ErrInvalidCurrency
	}
	return &Cart{Owner: owner, Currency: currency}, nil
}

// GuestOwner builds the owner key for an anonymous session token.
func GuestOwner(token string) string {
	return GuestOwnerPrefix + strings.TrimSpace(token)
}

// IsGuestOwner reports whether the owner key belongs to an anonymous session.
func IsGuestOwner(owner string) bool {
	return strings.HasPrefix(owner, GuestOwnerPrefix)
}

// AddLine merges a product into the cart. A line already present for the
// product has the quantity added and the unit price overwritten with the
// supplied value; price drift against the live catalog is accepted here and
// surfaced by Validate/checkout instead.
func (c *Cart) AddLine(productID string, quantity int, unitPrice float64, now time.Time) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if unitPrice < 0 {
		return ErrInvalidPrice
	}
	if line := c.line(productID); line != nil {
		line.Quantity += quantity
		line.UnitPrice = unitPrice
	} else {
		c.Items = append(c.Items, Line{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			AddedAt:   now,
		})
	}
	c.recompute()
	return nil
}

// SetQuantity replaces a line's quantity. A quantity of zero or less removes
// the line. The product must already be in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	line := c.line(productID)
	if line == nil {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.remove(productID)
	} else {
		line.Quantity = quantity
	}
	c.recompute()
	return nil
}

// RemoveLine deletes a line if present. Removal is idempotent.
func (c *Cart) RemoveLine(productID string) {
	c.remove(productID)
	c.recompute()
}

// Clear empties the cart. The cart document itself survives.
func (c *Cart) Clear() {
	c.Items = nil
	c.recompute()
}

// Line returns a copy of the line for the product, if present.
func (c *Cart) Line(productID string) (Line, bool) {
	if line := c.line(productID); line != nil {
		return *line, true
	}
	return Line{}, false
}

// Empty reports whether the cart holds no lines.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Expired reports whether a guest cart has outlived its TTL.
func (c *Cart) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

func (c *Cart) line(productID string) *Line {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// recompute rebuilds the derived totals from the lines. Every mutator calls
// it so repositories can persist the aggregate as-is.
func (c *Cart) recompute() {
	totalItems := 0
	totalAmount := 0.0
	for _, line := range c.Items {
		totalItems += line.Quantity
		totalAmount += line.Subtotal()
	}
	c.TotalItems = totalItems
	c.TotalAmount = totalAmount
}

func isValidCurrency(currency Currency) bool {
	switch currency {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return true
	default:
		return false
	}
}
