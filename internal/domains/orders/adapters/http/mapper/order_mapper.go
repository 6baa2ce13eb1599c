package mapper

import (
	"time"

	types "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
)

// Address is the HTTP representation of a postal address.
type Address struct {
	Name    string `json:"name,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// PaymentDetails exposes only masked, non-sensitive payment metadata.
type PaymentDetails struct {
	CardLastFour  string `json:"cardLastFour,omitempty"`
	CardBrand     string `json:"cardBrand,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

// OrderItem is the HTTP representation of one order line.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
	SupplierID  string  `json:"supplierId"`
}

// TimelineEntry is one audit record in the order history.
type TimelineEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
}

// Order is the actor-scoped HTTP representation of an order.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	BuyerID         string          `json:"buyerId"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentDetails  *PaymentDetails `json:"paymentDetails,omitempty"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	Currency        string          `json:"currency"`

	Subtotal         float64  `json:"subtotal"`
	ShippingCost     float64  `json:"shippingCost"`
	Tax              float64  `json:"tax"`
	Discount         float64  `json:"discount,omitempty"`
	TotalAmount      float64  `json:"totalAmount"`
	SupplierSubtotal *float64 `json:"supplierSubtotal,omitempty"`

	Notes    string          `json:"notes,omitempty"`
	Timeline []TimelineEntry `json:"timeline"`

	CancellationReason string     `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy        string     `json:"cancelledBy,omitempty"`
	RefundAmount       float64    `json:"refundAmount,omitempty"`
	RefundReason       string     `json:"refundReason,omitempty"`
	RefundedAt         *time.Time `json:"refundedAt,omitempty"`

	ActualDeliveryDate *time.Time `json:"actualDeliveryDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// PagedOrders is one transport page of orders.
type PagedOrders struct {
	Orders  []Order `json:"orders"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
}

// UpdateStatusRequest drives a supplier forward transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// CancelRequest carries the buyer's cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// RefundRequest carries the refund amount and reason. A zero amount refunds
// the full order total.
type RefundRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// FromProjection maps an actor-scoped projection into the transport order.
// Transaction IDs are masked to their last four characters; the full value
// stays server-side.
func FromProjection(projection *types.OrderProjection) Order {
	o := projection.Order
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
			SupplierID:  item.SupplierID,
		})
	}
	timeline := make([]TimelineEntry, 0, len(o.Timeline))
	for _, entry := range o.Timeline {
		timeline = append(timeline, TimelineEntry{
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp,
			Note:      entry.Note,
			Actor:     entry.Actor,
		})
	}
	return Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		Items:           items,
		ShippingAddress: fromDomainAddress(o.ShippingAddress),
		BillingAddress:  fromDomainAddress(o.BillingAddress),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentDetails:  fromPaymentDetails(o.PaymentDetails),
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Currency:        o.Currency,

		Subtotal:         o.Subtotal,
		ShippingCost:     o.ShippingCost,
		Tax:              o.Tax,
		Discount:         o.Discount,
		TotalAmount:      o.TotalAmount,
		SupplierSubtotal: clonePointer(projection.SupplierSubtotal),

		Notes:    o.Notes,
		Timeline: timeline,

		CancellationReason: o.CancellationReason,
		CancelledAt:        cloneTime(o.CancelledAt),
		CancelledBy:        o.CancelledBy,
		RefundAmount:       o.RefundAmount,
		RefundReason:       o.RefundReason,
		RefundedAt:         cloneTime(o.RefundedAt),

		ActualDeliveryDate: cloneTime(o.ActualDeliveryDate),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// FromPagedProjections maps a service page into the transport page.
func FromPagedProjections(page *types.PagedOrders) PagedOrders {
	orders := make([]Order, 0, len(page.Orders))
	for _, projection := range page.Orders {
		orders = append(orders, FromProjection(projection))
	}
	return PagedOrders{
		Orders:  orders,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
}

func fromDomainAddress(a domain.Address) Address {
	return Address{
		Name:    a.Name,
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
		Phone:   a.Phone,
	}
}

func fromPaymentDetails(d domain.PaymentDetails) *PaymentDetails {
	if d.CardLastFour == "" && d.CardBrand == "" && d.TransactionID == "" {
		return nil
	}
	return &PaymentDetails{
		CardLastFour:  d.CardLastFour,
		CardBrand:     d.CardBrand,
		TransactionID: maskTransactionID(d.TransactionID),
	}
}

func maskTransactionID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return "****" + id[len(id)-4:]
}

func clonePointer(value *float64) *float64 {
	if value == nil {
		return nil
	}
	copy := *value
	return &copy
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copy := *t
	return &copy
}
