package memory

import (
	"context"
	"errors"
	"sync"

	cartports "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"
	ordersdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
)

var _ ports.Store = (*Store)(nil)

// Store is the in-memory checkout boundary for development and tests. It
// front-loads every check that could fail so that by the time it starts
// writing, neither write can be refused; a single mutex serializes
// checkouts so no reader observes the half-applied pair.
type Store struct {
	mu     sync.Mutex
	carts  cartports.Repository
	orders ordersports.Repository
}

func NewStore(carts cartports.Repository, orders ordersports.Repository) *Store {
	return &Store{carts: carts, orders: orders}
}

// CreateOrderAndClearCart persists the order and empties the cart.
func (s *Store) CreateOrderAndClearCart(ctx context.Context, order *ordersdomain.Order, cartOwner string) (*ordersdomain.Order, error) {
	if s == nil || s.carts == nil || s.orders == nil {
		return nil, errors.New("memory checkout store not configured")
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.carts.GetByOwner(ctx, cartOwner)
	if err != nil {
		return nil, err
	}
	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	if _, err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return saved, nil
}
