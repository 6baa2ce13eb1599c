package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Page bounds a list query.
type Page struct {
	Offset int
	Limit  int
}

// Repository persists order aggregates. Orders are never hard-deleted;
// terminal states are retained for audit, so there is no Delete.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string, page Page) ([]*domain.Order, int64, error)
	ListBySupplier(ctx context.Context, supplierID string, page Page) ([]*domain.Order, int64, error)
}
