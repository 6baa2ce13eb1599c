package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory cart persistence adapter.
type Repository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewRepository() *Repository {
	return &Repository{carts: map[string]*domain.Cart{}}
}

func (r *Repository) GetByOwner(_ context.Context, owner string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart, ok := r.carts[owner]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneCart(cart), nil
}

func (r *Repository) Save(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if cart == nil {
		return nil, errors.New("cart is nil")
	}
	clone := cloneCart(cart)
	now := time.Now().UTC()
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	clone.UpdatedAt = now
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[clone.Owner] = clone
	return cloneCart(clone), nil
}

func (r *Repository) Delete(_ context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[owner]; !ok {
		return ports.ErrNotFound
	}
	delete(r.carts, owner)
	return nil
}

func (r *Repository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for owner, cart := range r.carts {
		if domain.IsGuestOwner(owner) && cart.Expired(now) {
			delete(r.carts, owner)
			purged++
		}
	}
	return purged, nil
}

func cloneCart(cart *domain.Cart) *domain.Cart {
	clone := *cart
	clone.Items = append([]domain.Line(nil), cart.Items...)
	if cart.ExpiresAt != nil {
		expires := *cart.ExpiresAt
		clone.ExpiresAt = &expires
	}
	return &clone
}
