package ports

import (
	"context"

	types "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace-server/internal/shared/identity"
)

// Service exposes order lifecycle use cases to adapters. Every operation
// takes the acting identity; authorization is resource-level (is this actor
// a party to the order), the role itself is trusted from upstream.
type Service interface {
	List(ctx context.Context, actor identity.Actor, input types.ListOrdersInput) (*types.PagedOrders, error)
	Get(ctx context.Context, actor identity.Actor, orderID string) (*types.OrderProjection, error)
	UpdateStatus(ctx context.Context, actor identity.Actor, input types.UpdateStatusInput) (*types.OrderProjection, error)
	Cancel(ctx context.Context, actor identity.Actor, input types.CancelInput) (*types.OrderProjection, error)
	Refund(ctx context.Context, actor identity.Actor, input types.RefundInput) (*types.OrderProjection, error)
}
