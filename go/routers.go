package marketserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every API endpoint.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// Routes is a map of defined API endpoints.
type Routes map[string][]Route

// ApiHandleFunctions groups the handler implementations per API section.
type ApiHandleFunctions struct {
	CartAPI     CartAPI
	CheckoutAPI CheckoutAPI
	OrderAPI    OrderAPI
}

// NewRouter returns a new router with the default gin engine.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the marketplace routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, routes := range getRoutes(handleFunctions) {
		for _, route := range routes {
			if route.HandlerFunc == nil {
				route.HandlerFunc = DefaultHandleFunc
			}
			switch route.Method {
			case http.MethodGet:
				router.GET(route.Pattern, route.HandlerFunc)
			case http.MethodPost:
				router.POST(route.Pattern, route.HandlerFunc)
			case http.MethodPut:
				router.PUT(route.Pattern, route.HandlerFunc)
			case http.MethodPatch:
				router.PATCH(route.Pattern, route.HandlerFunc)
			case http.MethodDelete:
				router.DELETE(route.Pattern, route.HandlerFunc)
			}
		}
	}
	return router
}

// DefaultHandleFunc responds for unimplemented routes.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) Routes {
	return Routes{
		"CartAPI": {
			{
				Name:        "GetCart",
				Method:      http.MethodGet,
				Pattern:     "/v2/cart",
				HandlerFunc: handleFunctions.CartAPI.GetCart,
			},
			{
				Name:        "AddCartItem",
				Method:      http.MethodPost,
				Pattern:     "/v2/cart/items",
				HandlerFunc: handleFunctions.CartAPI.AddCartItem,
			},
			{
				Name:        "UpdateCartItem",
				Method:      http.MethodPut,
				Pattern:     "/v2/cart/items/:productId",
				HandlerFunc: handleFunctions.CartAPI.UpdateCartItem,
			},
			{
				Name:        "RemoveCartItem",
				Method:      http.MethodDelete,
				Pattern:     "/v2/cart/items/:productId",
				HandlerFunc: handleFunctions.CartAPI.RemoveCartItem,
			},
			{
				Name:        "ClearCart",
				Method:      http.MethodDelete,
				Pattern:     "/v2/cart",
				HandlerFunc: handleFunctions.CartAPI.ClearCart,
			},
			{
				Name:        "MergeGuestCart",
				Method:      http.MethodPost,
				Pattern:     "/v2/cart/merge",
				HandlerFunc: handleFunctions.CartAPI.MergeGuestCart,
			},
			{
				Name:        "ValidateCart",
				Method:      http.MethodPost,
				Pattern:     "/v2/cart/validate",
				HandlerFunc: handleFunctions.CartAPI.ValidateCart,
			},
		},
		"CheckoutAPI": {
			{
				Name:        "Checkout",
				Method:      http.MethodPost,
				Pattern:     "/v2/checkout",
				HandlerFunc: handleFunctions.CheckoutAPI.Checkout,
			},
		},
		"OrderAPI": {
			{
				Name:        "ListOrders",
				Method:      http.MethodGet,
				Pattern:     "/v2/orders",
				HandlerFunc: handleFunctions.OrderAPI.ListOrders,
			},
			{
				Name:        "GetOrderById",
				Method:      http.MethodGet,
				Pattern:     "/v2/orders/:orderId",
				HandlerFunc: handleFunctions.OrderAPI.GetOrderById,
			},
			{
				Name:        "UpdateOrderStatus",
				Method:      http.MethodPut,
				Pattern:     "/v2/orders/:orderId/status",
				HandlerFunc: handleFunctions.OrderAPI.UpdateOrderStatus,
			},
			{
				Name:        "CancelOrder",
				Method:      http.MethodPut,
				Pattern:     "/v2/orders/:orderId/cancel",
				HandlerFunc: handleFunctions.OrderAPI.CancelOrder,
			},
			{
				Name:        "RefundOrder",
				Method:      http.MethodPut,
				Pattern:     "/v2/orders/:orderId/refund",
				HandlerFunc: handleFunctions.OrderAPI.RefundOrder,
			},
		},
	}
}
