package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogports "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
)

// DefaultGuestTTL bounds the lifetime of anonymous carts.
const DefaultGuestTTL = 72 * time.Hour

// Service orchestrates cart use cases.
type Service struct {
	repo     ports.Repository
	catalog  catalogports.Catalog
	guestTTL time.Duration
}

type Option func(*Service)

// WithGuestTTL overrides the anonymous cart time-to-live.
func WithGuestTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.guestTTL = ttl
		}
	}
}

func NewService(repo ports.Repository, catalog catalogports.Catalog, opts ...Option) *Service {
	s := &Service{repo: repo, catalog: catalog, guestTTL: DefaultGuestTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GetCart returns the owner's cart, creating an empty one on first access.
func (s *Service) GetCart(ctx context.Context, owner string) (*domain.Cart, error) {
	return s.getOrCreate(ctx, owner)
}

// AddItem merges a product line into the owner's cart. The product must be
// purchasable, the resulting line quantity must meet the product's minimum
// order quantity, and the stock must cover it. The supplied price is stored
// as-is; drift against the live price is reported by ValidateCart.
func (s *Service) AddItem(ctx context.Context, owner, productID string, quantity int, unitPrice float64) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogports.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		return nil, err
	}
	if !product.Purchasable() {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
	}
	lineQuantity := quantity
	if existing, ok := cart.Line(productID); ok {
		lineQuantity += existing.Quantity
	}
	if lineQuantity < product.MinOrderQuantity {
		return nil, fmt.Errorf("%w: %s requires at least %d", ErrBelowMinQuantity, productID, product.MinOrderQuantity)
	}
	if lineQuantity > product.Stock {
		return nil, fmt.Errorf("%w: %s has %d in stock", ErrInsufficientStock, productID, product.Stock)
	}
	if err := cart.AddLine(productID, quantity, unitPrice, time.Now().UTC()); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, cart)
}

// UpdateQuantity replaces a line's quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := cart.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	return s.repo.Save(ctx, cart)
}

// RemoveItem deletes a line. A line already absent is not an error.
func (s *Service) RemoveItem(ctx context.Context, owner, productID string) (*domain.Cart, error) {
	cart, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.RemoveLine(productID)
	return s.repo.Save(ctx, cart)
}

// ClearCart empties the owner's cart without deleting the document.
func (s *Service) ClearCart(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return s.repo.Save(ctx, cart)
}

// MergeGuestCart replays every guest line through AddItem in order, then
// deletes the guest cart. The replay is not atomic across lines: a failure
// partway leaves the buyer cart partially merged and the guest cart intact.
func (s *Service) MergeGuestCart(ctx context.Context, buyerID, guestToken string) (*domain.Cart, error) {
	guestOwner := domain.GuestOwner(guestToken)
	guestCart, err := s.repo.GetByOwner(ctx, guestOwner)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return s.getOrCreate(ctx, buyerID)
		}
		return nil, err
	}
	merged, err := s.getOrCreate(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	for _, line := range guestCart.Items {
		merged, err = s.AddItem(ctx, buyerID, line.ProductID, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
	}
	if err := s.repo.Delete(ctx, guestOwner); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	return merged, nil
}

// ValidateCart cross-checks every line against the live catalog and reports
// at most one issue per line. The cart itself is left untouched.
func (s *Service) ValidateCart(ctx context.Context, owner string) ([]ports.Issue, error) {
	cart, err := s.repo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	issues := make([]ports.Issue, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		switch {
		case errors.Is(err, catalogports.ErrProductNotFound):
			issues = append(issues, ports.Issue{
				ProductID: line.ProductID,
				Code:      ports.IssueProductNotFound,
				Detail:    "product no longer exists",
			})
			continue
		case err != nil:
			return nil, err
		}
		switch {
		case !product.Purchasable():
			issues = append(issues, ports.Issue{
				ProductID: line.ProductID,
				Code:      ports.IssueProductInactive,
				Detail:    fmt.Sprintf("product status is %s", product.Status),
			})
		case line.Quantity < product.MinOrderQuantity:
			issues = append(issues, ports.Issue{
				ProductID: line.ProductID,
				Code:      ports.IssueMinQuantityNotMet,
				Detail:    fmt.Sprintf("minimum order quantity is %d", product.MinOrderQuantity),
			})
		case line.Quantity > product.Stock:
			issues = append(issues, ports.Issue{
				ProductID: line.ProductID,
				Code:      ports.IssueInsufficientStock,
				Detail:    fmt.Sprintf("only %d in stock", product.Stock),
			})
		case line.UnitPrice != product.Price:
			issues = append(issues, ports.Issue{
				ProductID:    line.ProductID,
				Code:         ports.IssuePriceChanged,
				Detail:       fmt.Sprintf("price changed from %.2f to %.2f", line.UnitPrice, product.Price),
				CurrentPrice: product.Price,
			})
		}
	}
	return issues, nil
}

func (s *Service) getOrCreate(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := s.repo.GetByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	cart, err = domain.NewCart(owner, domain.DefaultCurrency)
	if err != nil {
		return nil, mapError(err)
	}
	if domain.IsGuestOwner(owner) {
		expires := time.Now().UTC().Add(s.guestTTL)
		cart.ExpiresAt = &expires
	}
	return s.repo.Save(ctx, cart)
}

var _ ports.Service = (*Service)(nil)
