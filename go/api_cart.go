package marketserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/http/mapper"
	cartapp "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/application"
	cartdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	cartports "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
)

// CartAPI wires HTTP transport with the cart bounded context service.
type CartAPI struct {
	service cartports.Service
}

// NewCartAPI creates a CartAPI backed by the provided service.
func NewCartAPI(service cartports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /v2/cart
// Returns the caller's cart, creating an empty one on first access
func (api *CartAPI) GetCart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	cart, err := api.service.GetCart(c.Request.Context(), cartOwnerKey(actor))
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Post /v2/cart/items
// Adds a product to the cart, merging quantity on repeats
func (api *CartAPI) AddCartItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var payload carthttpmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	cart, err := api.service.AddItem(c.Request.Context(), cartOwnerKey(actor), payload.ProductID, payload.Quantity, payload.UnitPrice)
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Put /v2/cart/items/:productId
// Replaces a line's quantity; zero removes the line
func (api *CartAPI) UpdateCartItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var payload carthttpmapper.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	cart, err := api.service.UpdateQuantity(c.Request.Context(), cartOwnerKey(actor), c.Param("productId"), payload.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Delete /v2/cart/items/:productId
// Removes a line from the cart
func (api *CartAPI) RemoveCartItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	cart, err := api.service.RemoveItem(c.Request.Context(), cartOwnerKey(actor), c.Param("productId"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Delete /v2/cart
// Empties the cart without deleting it
func (api *CartAPI) ClearCart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	cart, err := api.service.ClearCart(c.Request.Context(), cartOwnerKey(actor))
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Post /v2/cart/merge
// Folds a guest cart into the signed-in buyer's cart
func (api *CartAPI) MergeGuestCart(c *gin.Context) {
	actor, ok := requireBuyer(c)
	if !ok {
		return
	}
	var payload carthttpmapper.MergeRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	cart, err := api.service.MergeGuestCart(c.Request.Context(), actor.ID, payload.GuestToken)
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Post /v2/cart/validate
// Cross-checks every cart line against the live catalog
func (api *CartAPI) ValidateCart(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	issues, err := api.service.ValidateCart(c.Request.Context(), cartOwnerKey(actor))
	if err != nil {
		respondCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromIssues(issues))
}

func respondCartError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, cartports.ErrNotFound), errors.Is(err, cartdomain.ErrLineNotFound):
		respondError(c, http.StatusNotFound, err)
	case errors.Is(err, cartapp.ErrProductUnavailable),
		errors.Is(err, cartapp.ErrBelowMinQuantity),
		errors.Is(err, cartapp.ErrInsufficientStock),
		errors.Is(err, cartapp.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
