package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	addr := Address{Name: "Acme Receiving", Street: "1 Dock Rd", City: "Springfield", Country: "US"}
	return &Order{
		ID:              "ord-1",
		OrderNumber:     "ORD-20260901120000-ABC123",
		BuyerID:         "buyer-1",
		Items:           []Item{{ProductID: "prod-1", ProductName: "Bolt Pack", Quantity: 2, UnitPrice: 10.00, SupplierID: "sup-1"}},
		ShippingAddress: addr,
		BillingAddress:  addr,
		PaymentMethod:   MethodCreditCard,
		Status:          StatusConfirmed,
		PaymentStatus:   PaymentPaid,
		Currency:        "USD",
		Subtotal:        20.00,
		Tax:             2.00,
		TotalAmount:     22.00,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validOrder().Validate())

	order := validOrder()
	order.BuyerID = "  "
	require.ErrorIs(t, order.Validate(), ErrInvalidBuyer)

	order = validOrder()
	order.Items = nil
	require.ErrorIs(t, order.Validate(), ErrEmptyItems)

	order = validOrder()
	order.Items[0].Quantity = 0
	require.ErrorIs(t, order.Validate(), ErrInvalidItem)

	order = validOrder()
	order.ShippingAddress.City = ""
	require.ErrorIs(t, order.Validate(), ErrInvalidAddress)

	order = validOrder()
	order.ShippingAddress.Phone = "not-a-phone"
	require.ErrorIs(t, order.Validate(), ErrInvalidPhone)

	order = validOrder()
	order.PaymentMethod = "barter"
	require.ErrorIs(t, order.Validate(), ErrInvalidPaymentMethod)

	order = validOrder()
	order.TotalAmount = 25.00
	require.ErrorIs(t, order.Validate(), ErrInvalidAmounts)
}

func TestAdvance_ForwardPath(t *testing.T) {
	order := validOrder()
	order.Status = StatusPending
	now := time.Now().UTC()

	for _, next := range []OrderStatus{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered} {
		require.NoError(t, order.Advance(next, "sup-1", "", now))
		require.Equal(t, next, order.Status)
	}
	require.NotNil(t, order.ActualDeliveryDate)
	require.Equal(t, now, *order.ActualDeliveryDate)
	require.True(t, order.Terminal())
	require.Len(t, order.Timeline, 4)
}

func TestAdvance_RejectsSkipsAndBackwardMoves(t *testing.T) {
	now := time.Now().UTC()

	order := validOrder()
	order.Status = StatusPending
	require.ErrorIs(t, order.Advance(StatusShipped, "sup-1", "", now), ErrInvalidTransition)
	require.Equal(t, StatusPending, order.Status)

	order.Status = StatusShipped
	require.ErrorIs(t, order.Advance(StatusProcessing, "sup-1", "", now), ErrInvalidTransition)

	// Terminal states have no exits.
	for _, terminal := range []OrderStatus{StatusDelivered, StatusCancelled, StatusRefunded} {
		order.Status = terminal
		require.ErrorIs(t, order.Advance(StatusConfirmed, "sup-1", "", now), ErrInvalidTransition)
	}
}

func TestCancel(t *testing.T) {
	now := time.Now().UTC()

	for _, status := range []OrderStatus{StatusPending, StatusConfirmed} {
		order := validOrder()
		order.Status = status
		require.NoError(t, order.Cancel("buyer-1", "changed my mind", now))
		require.Equal(t, StatusCancelled, order.Status)
		require.NotNil(t, order.CancelledAt)
		require.Equal(t, "buyer-1", order.CancelledBy)
		require.Equal(t, "changed my mind", order.CancellationReason)
	}

	for _, status := range []OrderStatus{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded} {
		order := validOrder()
		order.Status = status
		require.ErrorIs(t, order.Cancel("buyer-1", "too late", now), ErrCannotCancel)
	}
}

func TestRefund(t *testing.T) {
	now := time.Now().UTC()

	order := validOrder()
	order.Status = StatusDelivered
	require.NoError(t, order.Refund(22.00, "sup-1", "damaged goods", now))
	require.Equal(t, StatusRefunded, order.Status)
	require.Equal(t, PaymentRefunded, order.PaymentStatus)
	require.Equal(t, 22.00, order.RefundAmount)
	require.NotNil(t, order.RefundedAt)

	// A refund below the total marks the payment partially refunded.
	order = validOrder()
	order.Status = StatusCancelled
	require.NoError(t, order.Refund(10.00, "sup-1", "restocking fee kept", now))
	require.Equal(t, PaymentPartiallyRefunded, order.PaymentStatus)
	require.Equal(t, 10.00, order.RefundAmount)
}

func TestRefund_Rejections(t *testing.T) {
	now := time.Now().UTC()

	order := validOrder()
	order.Status = StatusProcessing
	require.ErrorIs(t, order.Refund(22.00, "sup-1", "", now), ErrCannotRefund)

	order = validOrder()
	order.Status = StatusDelivered
	order.PaymentStatus = PaymentPending
	require.ErrorIs(t, order.Refund(22.00, "sup-1", "", now), ErrCannotRefund)

	order = validOrder()
	order.Status = StatusDelivered
	require.ErrorIs(t, order.Refund(0, "sup-1", "", now), ErrInvalidRefundAmount)
	require.ErrorIs(t, order.Refund(22.01, "sup-1", "", now), ErrInvalidRefundAmount)
}

func TestSupplierHelpers(t *testing.T) {
	order := validOrder()
	order.Items = []Item{
		{ProductID: "prod-1", Quantity: 1, UnitPrice: 10.00, SupplierID: "sup-1"},
		{ProductID: "prod-2", Quantity: 2, UnitPrice: 5.00, SupplierID: "sup-2"},
		{ProductID: "prod-3", Quantity: 1, UnitPrice: 7.00, SupplierID: "sup-1"},
	}

	require.True(t, order.HasSupplier("sup-1"))
	require.False(t, order.HasSupplier("sup-9"))
	require.Equal(t, []string{"sup-1", "sup-2"}, order.SupplierIDs())

	own := order.ItemsForSupplier("sup-1")
	require.Len(t, own, 2)
	require.Equal(t, "prod-1", own[0].ProductID)
	require.Equal(t, "prod-3", own[1].ProductID)
}
