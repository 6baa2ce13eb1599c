package marketserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	cartdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	apierrors "github.com/Apurer/go-gin-marketplace-server/internal/shared/errors"
	"github.com/Apurer/go-gin-marketplace-server/internal/shared/identity"
)

// Identity headers injected by the upstream gateway. The gateway has already
// authenticated the caller; this service only consumes the result.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderGuestID  = "X-Guest-ID"
)

// currentActor resolves the calling identity from the gateway headers.
// Authenticated users take precedence over a guest token; a request carrying
// neither is rejected with 401.
func currentActor(c *gin.Context) (identity.Actor, bool) {
	userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if userID != "" {
		role := identity.Role(strings.TrimSpace(c.GetHeader(HeaderUserRole)))
		if role == "" {
			role = identity.RoleBuyer
		}
		actor := identity.Actor{ID: userID, Role: role}
		if !actor.Valid() {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("unrecognized role"))
			return identity.Actor{}, false
		}
		return actor, true
	}
	guestID := strings.TrimSpace(c.GetHeader(HeaderGuestID))
	if guestID != "" {
		return identity.Actor{ID: guestID, Role: identity.RoleGuest}, true
	}
	respondProblem(c, apierrors.ErrUnauthorized.WithDetail("identity headers are required"))
	return identity.Actor{}, false
}

// requireBuyer resolves the actor and rejects anything but a buyer.
func requireBuyer(c *gin.Context) (identity.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return identity.Actor{}, false
	}
	if !actor.IsBuyer() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("buyer role required"))
		return identity.Actor{}, false
	}
	return actor, true
}

// requireSupplier resolves the actor and rejects anything but a supplier.
func requireSupplier(c *gin.Context) (identity.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return identity.Actor{}, false
	}
	if !actor.IsSupplier() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("supplier role required"))
		return identity.Actor{}, false
	}
	return actor, true
}

// requireUser resolves the actor and rejects guests.
func requireUser(c *gin.Context) (identity.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return identity.Actor{}, false
	}
	if actor.IsGuest() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("sign in to perform this action"))
		return identity.Actor{}, false
	}
	return actor, true
}

// cartOwnerKey maps the actor onto the cart owner keyspace. Guests get the
// prefixed key so their carts are distinguishable and purgeable.
func cartOwnerKey(actor identity.Actor) string {
	if actor.IsGuest() {
		return cartdomain.GuestOwner(actor.ID)
	}
	return actor.ID
}
