package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	cartpostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"
	orderspostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/persistence/postgres"
	ordersdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

var _ ports.Store = (*Store)(nil)

// Store commits checkout in one PostgreSQL transaction: the order insert and
// the cart emptying either both land or the whole thing rolls back.
type Store struct {
	db     *gorm.DB
	orders *orderspostgres.Repository
}

// NewStore wires the transactional checkout store. Caller manages DB lifecycle.
func NewStore(db *gorm.DB, orders *orderspostgres.Repository) *Store {
	return &Store{db: db, orders: orders}
}

// CreateOrderAndClearCart persists the order and empties the cart atomically.
func (s *Store) CreateOrderAndClearCart(ctx context.Context, order *ordersdomain.Order, cartOwner string) (*ordersdomain.Order, error) {
	if s == nil || s.db == nil || s.orders == nil {
		return nil, errors.New("postgres checkout store not configured")
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := orderspostgres.SaveTx(tx, order); err != nil {
			return err
		}
		return cartpostgres.ClearTx(tx, cartOwner)
	})
	if err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, order.ID)
}
