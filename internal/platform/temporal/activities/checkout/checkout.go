package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	checkouttypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application/types"
	checkoutports "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"
	orderstypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
)

// PlaceOrderActivityName converts a cart into an order through the checkout service.
const PlaceOrderActivityName = "checkout.activities.PlaceOrder"

// Activities groups activities that operate on the checkout bounded context.
type Activities struct {
	service checkoutports.Service
}

// NewActivities wires the checkout service into the Temporal activities bundle.
func NewActivities(service checkoutports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder runs the checkout use case and returns the buyer projection.
func (a *Activities) PlaceOrder(ctx context.Context, input checkouttypes.CheckoutInput) (*orderstypes.OrderProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized", "buyerId", input.BuyerID)
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "buyerId", input.BuyerID)
	projection, err := a.service.Checkout(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "buyerId", input.BuyerID, "error", err)
		return nil, err
	}
	if projection != nil && projection.Order != nil {
		logger.Info("PlaceOrder activity completed", "orderNumber", projection.Order.OrderNumber)
	} else {
		logger.Info("PlaceOrder activity completed")
	}
	return projection, nil
}
