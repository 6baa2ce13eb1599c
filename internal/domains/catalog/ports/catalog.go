package ports

import (
	"context"
	"errors"
)

// ErrProductNotFound indicates the catalog has no product for the id.
var ErrProductNotFound = errors.New("product not found")

// ProductStatus enumerates catalog publication states.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductArchived ProductStatus = "archived"
)

// Product is the catalog projection the marketplace core consumes.
// The catalog service owns the full product document; only the fields
// needed for cart validation and checkout cross the boundary.
type Product struct {
	ID               string
	Name             string
	Price            float64
	Status           ProductStatus
	MinOrderQuantity int
	Stock            int
	SupplierID       string
}

// Purchasable reports whether the product can currently be ordered.
func (p *Product) Purchasable() bool {
	return p != nil && p.Status == ProductActive
}

// Catalog is the outbound port to the product catalog service.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}
