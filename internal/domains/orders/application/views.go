package application

import (
	"time"

	types "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

// BuyerView projects the order for its buyer: the aggregate is returned
// whole, as a copy so callers can never mutate the stored state.
func BuyerView(order *domain.Order) *types.OrderProjection {
	return &types.OrderProjection{Order: cloneOrder(order)}
}

// SupplierView projects the order for one supplier: items are filtered down
// to the supplier's own lines and SupplierSubtotal is computed over just
// those lines. All other order fields stay intact.
func SupplierView(order *domain.Order, supplierID string) *types.OrderProjection {
	clone := cloneOrder(order)
	clone.Items = order.ItemsForSupplier(supplierID)
	subtotal := 0.0
	for _, item := range clone.Items {
		subtotal += item.Subtotal()
	}
	return &types.OrderProjection{Order: clone, SupplierSubtotal: &subtotal}
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = append([]domain.Item(nil), order.Items...)
	clone.Timeline = append([]domain.TimelineEntry(nil), order.Timeline...)
	clone.CancelledAt = cloneTime(order.CancelledAt)
	clone.RefundedAt = cloneTime(order.RefundedAt)
	clone.ActualDeliveryDate = cloneTime(order.ActualDeliveryDate)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
