package ports

import (
	"context"

	checkouttypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application/types"
	orderstypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
)

// Service exposes the checkout use case to adapters.
type Service interface {
	Checkout(ctx context.Context, input checkouttypes.CheckoutInput) (*orderstypes.OrderProjection, error)
}

// Orchestrator runs checkout either inline or through durable execution.
// The caller blocks on the result either way; checkout stays a synchronous
// request/response operation.
type Orchestrator interface {
	Checkout(ctx context.Context, input checkouttypes.CheckoutInput) (*orderstypes.OrderProjection, error)
}
