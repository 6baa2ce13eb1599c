package checkout

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	checkouttypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application/types"
	orderstypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	checkoutactivities "github.com/Apurer/go-gin-marketplace-server/internal/platform/temporal/activities/checkout"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the workflow.
	CheckoutWorkflowName = "checkout.workflows.PlaceOrder"
	// CheckoutTaskQueue is the queue consumed by the worker processing checkout workflows.
	CheckoutTaskQueue = "CHECKOUT"
)

// CheckoutWorkflowInput captures the payload needed to convert a cart into an order.
type CheckoutWorkflowInput struct {
	Command checkouttypes.CheckoutInput
	TraceID string
}

// CheckoutWorkflow runs the place-order activity with durable retries. The
// atomicity of order creation plus cart emptying lives inside the activity's
// storage transaction; the workflow only adds retry durability around it,
// which is safe because the activity replays idempotently via the
// checkout idempotency key.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*orderstypes.OrderProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "buyerId", input.Command.BuyerID)...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	var projection orderstypes.OrderProjection
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, options),
		checkoutactivities.PlaceOrderActivityName,
		input.Command,
	).Get(ctx, &projection)
	if err != nil {
		logger.Error("CheckoutWorkflow failed", withTraceID(input.TraceID, "buyerId", input.Command.BuyerID, "error", err)...)
		return nil, err
	}
	if projection.Order != nil {
		logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "orderNumber", projection.Order.OrderNumber)...)
	} else {
		logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID)...)
	}
	return &projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
