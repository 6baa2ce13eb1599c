// Package types holds the transport-neutral inputs and projections of the
// orders application layer.
package types

import (
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

// OrderProjection is an actor-scoped read of one order. For buyers the
// order is returned whole; for suppliers the items are filtered to the
// requesting supplier's own lines and SupplierSubtotal is set over just
// those lines. Projections are derived copies, never the stored aggregate.
type OrderProjection struct {
	Order            *domain.Order
	SupplierSubtotal *float64
}

// ListOrdersInput bounds an order listing.
type ListOrdersInput struct {
	Page    int
	PerPage int
}

// PagedOrders is one page of actor-scoped order projections.
type PagedOrders struct {
	Orders  []*OrderProjection
	Total   int64
	Page    int
	PerPage int
}

// UpdateStatusInput drives one supplier-initiated forward transition.
type UpdateStatusInput struct {
	OrderID string
	Next    domain.OrderStatus
	Note    string
}

// CancelInput drives the buyer-initiated cancellation side exit.
type CancelInput struct {
	OrderID string
	Reason  string
}

// RefundInput drives the refund side exit on a paid terminal order.
type RefundInput struct {
	OrderID string
	Amount  float64
	Reason  string
}
