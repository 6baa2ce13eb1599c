// Package identity carries the authenticated actor resolved by the upstream
// gateway. This core trusts that authentication and role-level authorization
// already happened; it only enforces resource-level ownership.
package identity

import "strings"

// Role is the coarse actor classification supplied with every request.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleGuest    Role = "guest"
)

// Actor is the identity acting on a request.
type Actor struct {
	ID   string
	Role Role
}

// Valid reports whether the actor carries a usable identity.
func (a Actor) Valid() bool {
	return strings.TrimSpace(a.ID) != "" && IsValidRole(a.Role)
}

func (a Actor) IsBuyer() bool    { return a.Role == RoleBuyer }
func (a Actor) IsSupplier() bool { return a.Role == RoleSupplier }
func (a Actor) IsGuest() bool    { return a.Role == RoleGuest }

// IsValidRole reports whether the value is a known role.
func IsValidRole(role Role) bool {
	switch role {
	case RoleBuyer, RoleSupplier, RoleGuest:
		return true
	default:
		return false
	}
}
