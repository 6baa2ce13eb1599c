package marketserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cartports "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
	checkouthttpmapper "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/adapters/http/mapper"
	checkoutapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application"
	checkouttypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/application/types"
	checkoutports "github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"
	orderhttpmapper "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/http/mapper"
	orderstypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

// HeaderIdempotencyKey lets clients retry a checkout without double-ordering.
const HeaderIdempotencyKey = "Idempotency-Key"

// CheckoutAPI wires HTTP transport with the checkout bounded context service
// and its durable orchestrator.
type CheckoutAPI struct {
	service      checkoutports.Service
	orchestrator checkoutports.Orchestrator
}

// NewCheckoutAPI creates a CheckoutAPI backed by the provided service.
func NewCheckoutAPI(service checkoutports.Service, orchestrator checkoutports.Orchestrator) CheckoutAPI {
	return CheckoutAPI{service: service, orchestrator: orchestrator}
}

// Post /v2/checkout
// Converts the buyer's cart into an order
func (api *CheckoutAPI) Checkout(c *gin.Context) {
	actor, ok := requireBuyer(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := checkouthttpmapper.ToCheckoutInput(actor.ID, c.GetHeader(HeaderIdempotencyKey), payload)
	projection, err := api.placeOrder(c.Request.Context(), input)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromProjection(projection))
}

func (api *CheckoutAPI) placeOrder(ctx context.Context, input checkouttypes.CheckoutInput) (*orderstypes.OrderProjection, error) {
	if api.orchestrator != nil {
		return api.orchestrator.Checkout(ctx, input)
	}
	return api.service.Checkout(ctx, input)
}

func respondCheckoutError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, checkoutapp.ErrIncompleteAddress),
		errors.Is(err, checkoutapp.ErrMissingPaymentMethod),
		errors.Is(err, checkoutapp.ErrInvalidPaymentMethod),
		errors.Is(err, checkoutapp.ErrEmptyCart),
		errors.Is(err, ordersdomain.ErrInvalidPhone),
		errors.Is(err, cartports.ErrNotFound):
		respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, checkoutapp.ErrProductUnavailable),
		errors.Is(err, checkoutports.ErrIdempotencyConflict):
		respondError(c, http.StatusConflict, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
