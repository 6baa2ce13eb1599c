package ports

import (
	"context"

	ordersdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

// Store is the transactional boundary of checkout: persisting the new order
// and emptying the buyer's cart commit together or not at all. An abort
// leaves the cart byte-for-byte unchanged and no order visible to any
// reader.
type Store interface {
	CreateOrderAndClearCart(ctx context.Context, order *ordersdomain.Order, cartOwner string) (*ordersdomain.Order, error)
}
