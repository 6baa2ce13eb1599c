package marketserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/http/mapper"
	ordersapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application"
	orderstypes "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	ordersdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
)

// OrderAPI wires HTTP transport with the orders bounded context service.
type OrderAPI struct {
	service ordersports.Service
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ordersports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Get /v2/orders
// Lists the caller's orders, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	input := orderstypes.ListOrdersInput{
		Page:    parseQueryInt(c, "page"),
		PerPage: parseQueryInt(c, "perPage"),
	}
	page, err := api.service.List(c.Request.Context(), actor, input)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromPagedProjections(page))
}

// Get /v2/orders/:orderId
// Loads one order scoped to the caller
func (api *OrderAPI) GetOrderById(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	projection, err := api.service.Get(c.Request.Context(), actor, c.Param("orderId"))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(projection))
}

// Put /v2/orders/:orderId/status
// Advances the order one step along the fulfilment path
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	actor, ok := requireSupplier(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := orderstypes.UpdateStatusInput{
		OrderID: c.Param("orderId"),
		Next:    ordersdomain.OrderStatus(payload.Status),
		Note:    payload.Note,
	}
	projection, err := api.service.UpdateStatus(c.Request.Context(), actor, input)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(projection))
}

// Put /v2/orders/:orderId/cancel
// Cancels an order still inside the cancellation window
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	actor, ok := requireBuyer(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.CancelRequest
	// The reason is optional, so a bodyless cancel is accepted.
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := orderstypes.CancelInput{OrderID: c.Param("orderId"), Reason: payload.Reason}
	projection, err := api.service.Cancel(c.Request.Context(), actor, input)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(projection))
}

// Put /v2/orders/:orderId/refund
// Refunds a settled order in full or in part
func (api *OrderAPI) RefundOrder(c *gin.Context) {
	actor, ok := requireSupplier(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.RefundRequest
	// Amount and reason are optional; an empty body refunds in full.
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := orderstypes.RefundInput{
		OrderID: c.Param("orderId"),
		Amount:  payload.Amount,
		Reason:  payload.Reason,
	}
	projection, err := api.service.Refund(c.Request.Context(), actor, input)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromProjection(projection))
}

func parseQueryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}

func respondOrderError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ordersapp.ErrNotParty):
		respondError(c, http.StatusForbidden, err)
	case errors.Is(err, ordersports.ErrNotFound):
		respondError(c, http.StatusNotFound, err)
	case errors.Is(err, ordersapp.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, ordersdomain.ErrInvalidTransition),
		errors.Is(err, ordersdomain.ErrCannotCancel),
		errors.Is(err, ordersdomain.ErrCannotRefund):
		respondError(c, http.StatusConflict, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
