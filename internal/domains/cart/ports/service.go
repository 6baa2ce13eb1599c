package ports

import (
	"context"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
)

// IssueCode classifies a cart validation finding.
type IssueCode string

const (
	IssueProductNotFound   IssueCode = "product_not_found"
	IssueProductInactive   IssueCode = "product_inactive"
	IssueMinQuantityNotMet IssueCode = "min_quantity_not_met"
	IssuePriceChanged      IssueCode = "price_changed"
	IssueInsufficientStock IssueCode = "insufficient_stock"
)

// Issue reports one problem found while cross-checking a cart line against
// the live catalog. Validation never mutates the cart.
type Issue struct {
	ProductID    string
	Code         IssueCode
	Detail       string
	CurrentPrice float64
}

// Service exposes cart use cases to adapters.
type Service interface {
	GetCart(ctx context.Context, owner string) (*domain.Cart, error)
	AddItem(ctx context.Context, owner, productID string, quantity int, unitPrice float64) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, owner, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, owner, productID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, owner string) (*domain.Cart, error)
	MergeGuestCart(ctx context.Context, buyerID, guestToken string) (*domain.Cart, error)
	ValidateCart(ctx context.Context, owner string) ([]Issue, error)
}
