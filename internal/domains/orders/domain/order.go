package domain

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
)

// OrderStatus enumerates order progression. The forward path is
// pending → confirmed → processing → shipped → delivered; cancelled and
// refunded are side exits. delivered, cancelled, and refunded are terminal.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus enumerates settlement states.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// PaymentMethod enumerates accepted payment instruments.
type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "credit_card"
	MethodDebitCard      PaymentMethod = "debit_card"
	MethodPayPal         PaymentMethod = "paypal"
	MethodBankTransfer   PaymentMethod = "bank_transfer"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

var (
	ErrInvalidBuyer         = errors.New("order buyer is required")
	ErrEmptyItems           = errors.New("order must contain at least one item")
	ErrInvalidItem          = errors.New("order item is invalid")
	ErrInvalidAddress       = errors.New("address must include street and city")
	ErrInvalidPhone         = errors.New("phone number is malformed")
	ErrInvalidPaymentMethod = errors.New("payment method is invalid")
	ErrInvalidAmounts       = errors.New("order amounts are inconsistent")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrCannotCancel         = errors.New("order can no longer be cancelled")
	ErrCannotRefund         = errors.New("order is not refundable")
	ErrInvalidRefundAmount  = errors.New("refund amount is invalid")
)

// forwardTransitions is the whitelist of supplier-driven transitions.
var forwardTransitions = map[OrderStatus]OrderStatus{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// phonePattern is a deliberately loose international phone check.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{5,19}$`)

// Address is a structured postal address.
type Address struct {
	Name    string
	Street  string
	City    string
	State   string
	Zip     string
	Country string
	Phone   string
}

// Validate enforces the minimum address requirements.
func (a Address) Validate() error {
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" {
		return ErrInvalidAddress
	}
	if phone := strings.TrimSpace(a.Phone); phone != "" && !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// PaymentDetails carries only non-sensitive payment metadata. Full card data
// never enters this system.
type PaymentDetails struct {
	CardLastFour  string
	CardBrand     string
	TransactionID string
}

// Item is one immutable order line, price-snapshotted at checkout time.
type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	SupplierID  string
}

// Subtotal returns the line contribution to the order subtotal.
func (i Item) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// TimelineEntry is one immutable audit record. Entries are only ever
// appended, never edited or removed.
type TimelineEntry struct {
	Status    OrderStatus
	Timestamp time.Time
	Note      string
	Actor     string
}

// Order is the aggregate produced by checkout. Everything except the
// status-governed fields is immutable after creation, and the aggregate is
// never hard-deleted: terminal orders are retained for audit.
type Order struct {
	ID              string
	OrderNumber     string
	BuyerID         string
	Items           []Item
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   PaymentMethod
	PaymentDetails  PaymentDetails
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	Currency        string

	Subtotal     float64
	ShippingCost float64
	Tax          float64
	Discount     float64
	TotalAmount  float64

	Notes    string
	Timeline []TimelineEntry

	CancellationReason string
	CancelledAt        *time.Time
	CancelledBy        string
	RefundAmount       float64
	RefundReason       string
	RefundedAt         *time.Time

	ActualDeliveryDate *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate enforces invariants on the aggregate. An order violating any of
// these must never be persisted.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.BuyerID) == "" {
		return ErrInvalidBuyer
	}
	if len(o.Items) == 0 {
		return ErrEmptyItems
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item.ProductID) == "" || strings.TrimSpace(item.SupplierID) == "" {
			return ErrInvalidItem
		}
		if item.Quantity < 1 || item.UnitPrice < 0 {
			return ErrInvalidItem
		}
	}
	if err := o.ShippingAddress.Validate(); err != nil {
		return err
	}
	if err := o.BillingAddress.Validate(); err != nil {
		return err
	}
	if !IsValidPaymentMethod(o.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	if o.Subtotal < 0 || o.ShippingCost < 0 || o.Tax < 0 || o.Discount < 0 || o.TotalAmount < 0 {
		return ErrInvalidAmounts
	}
	if !amountsBalance(o.Subtotal, o.ShippingCost, o.Tax, o.Discount, o.TotalAmount) {
		return ErrInvalidAmounts
	}
	return nil
}

// Advance moves the order one step along the forward path. Transitions not
// on the whitelist, including any move out of a terminal state, are
// rejected. Reaching delivered stamps the actual delivery date exactly once.
func (o *Order) Advance(next OrderStatus, actor, note string, now time.Time) error {
	allowed, ok := forwardTransitions[o.Status]
	if !ok || allowed != next {
		return ErrInvalidTransition
	}
	o.Status = next
	if next == StatusDelivered && o.ActualDeliveryDate == nil {
		delivered := now
		o.ActualDeliveryDate = &delivered
	}
	o.appendTimeline(next, note, actor, now)
	return nil
}

// Cancel is the buyer-driven side exit, allowed only while the order is
// still pending or confirmed. The cancellation fields are stamped exactly
// once and never overwritten.
func (o *Order) Cancel(actor, reason string, now time.Time) error {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return ErrCannotCancel
	}
	o.Status = StatusCancelled
	if o.CancelledAt == nil {
		cancelled := now
		o.CancelledAt = &cancelled
		o.CancelledBy = actor
		o.CancellationReason = reason
	}
	o.appendTimeline(StatusCancelled, reason, actor, now)
	return nil
}

// Refund transitions a paid, delivered or cancelled order to refunded and
// records the refund exactly once. A refund below the order total marks the
// payment as partially refunded.
func (o *Order) Refund(amount float64, actor, reason string, now time.Time) error {
	if o.Status != StatusDelivered && o.Status != StatusCancelled {
		return ErrCannotRefund
	}
	if o.PaymentStatus != PaymentPaid {
		return ErrCannotRefund
	}
	if amount <= 0 || amount > o.TotalAmount {
		return ErrInvalidRefundAmount
	}
	o.Status = StatusRefunded
	if o.RefundedAt == nil {
		refunded := now
		o.RefundedAt = &refunded
		o.RefundAmount = amount
		o.RefundReason = reason
	}
	if amount < o.TotalAmount {
		o.PaymentStatus = PaymentPartiallyRefunded
	} else {
		o.PaymentStatus = PaymentRefunded
	}
	o.appendTimeline(StatusRefunded, reason, actor, now)
	return nil
}

// Terminal reports whether the order reached a state with no exits.
func (o *Order) Terminal() bool {
	switch o.Status {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// HasSupplier reports whether the supplier owns at least one item. Owning a
// single item grants transition rights over the whole order; status is
// order-granular, not item-granular.
func (o *Order) HasSupplier(supplierID string) bool {
	for _, item := range o.Items {
		if item.SupplierID == supplierID {
			return true
		}
	}
	return false
}

// SupplierIDs returns the distinct suppliers referenced by the items,
// in first-appearance order.
func (o *Order) SupplierIDs() []string {
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.SupplierID]; ok {
			continue
		}
		seen[item.SupplierID] = struct{}{}
		ids = append(ids, item.SupplierID)
	}
	return ids
}

// ItemsForSupplier returns the supplier's own lines.
func (o *Order) ItemsForSupplier(supplierID string) []Item {
	items := make([]Item, 0, len(o.Items))
	for _, item := range o.Items {
		if item.SupplierID == supplierID {
			items = append(items, item)
		}
	}
	return items
}

// AppendCreated records the creation entry at the head of the timeline.
func (o *Order) AppendCreated(note, actor string, now time.Time) {
	o.appendTimeline(o.Status, note, actor, now)
}

func (o *Order) appendTimeline(status OrderStatus, note, actor string, now time.Time) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:    status,
		Timestamp: now,
		Note:      note,
		Actor:     actor,
	})
}

// IsValidStatus reports whether the value is a known order status.
func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// IsValidPaymentMethod reports whether the value is an accepted instrument.
func IsValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodBankTransfer, MethodCashOnDelivery:
		return true
	default:
		return false
	}
}

func amountsBalance(subtotal, shipping, tax, discount, total float64) bool {
	return math.Abs(total-(subtotal+shipping+tax-discount)) < 1e-6
}
