package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
)

var ErrNotFound = errors.New("cart not found")

// Repository persists cart aggregates keyed by owner.
type Repository interface {
	GetByOwner(ctx context.Context, owner string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	Delete(ctx context.Context, owner string) error
	// PurgeExpired removes guest carts whose TTL elapsed before now and
	// returns how many were deleted. Registered-buyer carts carry no TTL
	// and are never touched.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
