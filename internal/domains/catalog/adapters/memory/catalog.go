package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/ports"
)

var _ ports.Catalog = (*Catalog)(nil)

// Catalog is a seedable in-memory catalog adapter for dev and tests.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]ports.Product
}

func NewCatalog(products ...ports.Product) *Catalog {
	c := &Catalog{products: map[string]ports.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// Put inserts or replaces a product.
func (c *Catalog) Put(product ports.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product
}

func (c *Catalog) GetProduct(_ context.Context, id string) (*ports.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	product, ok := c.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	clone := product
	return &clone, nil
}
