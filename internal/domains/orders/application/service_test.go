package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	ordersmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/memory"
	types "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-marketplace-server/internal/shared/identity"
)

var (
	buyer    = identity.Actor{ID: "buyer-1", Role: identity.RoleBuyer}
	supplier = identity.Actor{ID: "sup-1", Role: identity.RoleSupplier}
)

func seedOrder(t *testing.T, repo *ordersmemory.Repository, status domain.OrderStatus) *domain.Order {
	t.Helper()
	addr := domain.Address{Street: "1 Dock Rd", City: "Springfield"}
	order := &domain.Order{
		OrderNumber: fmt.Sprintf("ORD-20260901120000-%06d", repoSeq()),
		BuyerID:     "buyer-1",
		Items: []domain.Item{
			{ProductID: "prod-1", ProductName: "Bolt Pack", Quantity: 2, UnitPrice: 10.00, SupplierID: "sup-1"},
			{ProductID: "prod-2", ProductName: "Sheet Metal", Quantity: 1, UnitPrice: 40.00, SupplierID: "sup-2"},
		},
		ShippingAddress: addr,
		BillingAddress:  addr,
		PaymentMethod:   domain.MethodCreditCard,
		Status:          status,
		PaymentStatus:   domain.PaymentPaid,
		Currency:        "USD",
		Subtotal:        60.00,
		Tax:             6.00,
		TotalAmount:     66.00,
	}
	saved, err := repo.Save(context.Background(), order)
	require.NoError(t, err)
	return saved
}

var seq int

func repoSeq() int {
	seq++
	return seq
}

func TestGet_PartyAuthorization(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	order := seedOrder(t, repo, domain.StatusConfirmed)
	ctx := context.Background()

	proj, err := svc.Get(ctx, buyer, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, proj.Order.ID)
	require.Len(t, proj.Order.Items, 2)
	require.Nil(t, proj.SupplierSubtotal)

	// A stranger and a wrong-role actor get the same denial as a missing order.
	_, err = svc.Get(ctx, identity.Actor{ID: "buyer-2", Role: identity.RoleBuyer}, order.ID)
	require.ErrorIs(t, err, ErrNotParty)
	_, err = svc.Get(ctx, identity.Actor{ID: "sup-9", Role: identity.RoleSupplier}, order.ID)
	require.ErrorIs(t, err, ErrNotParty)
	_, err = svc.Get(ctx, identity.Actor{ID: "buyer-1", Role: identity.RoleGuest}, order.ID)
	require.ErrorIs(t, err, ErrNotParty)
}

func TestGet_MissingOrderIsDeniedNotNotFound(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	order := seedOrder(t, repo, domain.StatusConfirmed)
	ctx := context.Background()

	// A denial on a missing id must be indistinguishable from a denial on
	// someone else's order, so ids cannot be enumerated.
	_, missingErr := svc.Get(ctx, buyer, "no-such-order")
	require.ErrorIs(t, missingErr, ErrNotParty)
	require.NotErrorIs(t, missingErr, ports.ErrNotFound)

	_, deniedErr := svc.Get(ctx, identity.Actor{ID: "buyer-2", Role: identity.RoleBuyer}, order.ID)
	require.ErrorIs(t, deniedErr, ErrNotParty)

	_, err := svc.UpdateStatus(ctx, supplier, types.UpdateStatusInput{OrderID: "no-such-order", Next: domain.StatusProcessing})
	require.ErrorIs(t, err, ErrNotParty)
	_, err = svc.Cancel(ctx, buyer, types.CancelInput{OrderID: "no-such-order"})
	require.ErrorIs(t, err, ErrNotParty)
	_, err = svc.Refund(ctx, supplier, types.RefundInput{OrderID: "no-such-order"})
	require.ErrorIs(t, err, ErrNotParty)
}

func TestGet_SupplierViewFiltersItems(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	order := seedOrder(t, repo, domain.StatusConfirmed)

	proj, err := svc.Get(context.Background(), supplier, order.ID)
	require.NoError(t, err)
	require.Len(t, proj.Order.Items, 1)
	require.Equal(t, "prod-1", proj.Order.Items[0].ProductID)
	require.NotNil(t, proj.SupplierSubtotal)
	require.InDelta(t, 20.00, *proj.SupplierSubtotal, 1e-9)
	// Order-level amounts stay whole; only items are scoped.
	require.InDelta(t, 66.00, proj.Order.TotalAmount, 1e-9)
}

func TestList_Paging(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	for i := 0; i < 5; i++ {
		seedOrder(t, repo, domain.StatusConfirmed)
	}

	page, err := svc.List(context.Background(), buyer, types.ListOrdersInput{Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.Equal(t, int64(5), page.Total)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 2, page.PerPage)

	// Out-of-range values fall back to the defaults and caps.
	page, err = svc.List(context.Background(), buyer, types.ListOrdersInput{Page: 0, PerPage: 0})
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 20, page.PerPage)

	page, err = svc.List(context.Background(), buyer, types.ListOrdersInput{Page: 1, PerPage: 500})
	require.NoError(t, err)
	require.Equal(t, 100, page.PerPage)
}

func TestList_SupplierScope(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	seedOrder(t, repo, domain.StatusConfirmed)

	page, err := svc.List(context.Background(), identity.Actor{ID: "sup-2", Role: identity.RoleSupplier}, types.ListOrdersInput{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Len(t, page.Orders[0].Order.Items, 1)
	require.Equal(t, "prod-2", page.Orders[0].Order.Items[0].ProductID)

	page, err = svc.List(context.Background(), identity.Actor{ID: "sup-9", Role: identity.RoleSupplier}, types.ListOrdersInput{})
	require.NoError(t, err)
	require.Equal(t, int64(0), page.Total)
	require.Empty(t, page.Orders)
}

func TestUpdateStatus(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	order := seedOrder(t, repo, domain.StatusConfirmed)
	ctx := context.Background()

	proj, err := svc.UpdateStatus(ctx, supplier, types.UpdateStatusInput{OrderID: order.ID, Next: domain.StatusProcessing, Note: "picking started"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, proj.Order.Status)

	// Buyers cannot drive transitions.
	_, err = svc.UpdateStatus(ctx, buyer, types.UpdateStatusInput{OrderID: order.ID, Next: domain.StatusShipped})
	require.ErrorIs(t, err, ErrNotParty)

	_, err = svc.UpdateStatus(ctx, supplier, types.UpdateStatusInput{OrderID: order.ID, Next: "teleported"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, supplier, types.UpdateStatusInput{OrderID: order.ID, Next: domain.StatusDelivered})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	order := seedOrder(t, repo, domain.StatusConfirmed)
	ctx := context.Background()

	// Suppliers cannot use the buyer's side exit.
	_, err := svc.Cancel(ctx, supplier, types.CancelInput{OrderID: order.ID, Reason: "nope"})
	require.ErrorIs(t, err, ErrNotParty)

	proj, err := svc.Cancel(ctx, buyer, types.CancelInput{OrderID: order.ID, Reason: "ordered twice"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, proj.Order.Status)
	require.Equal(t, "ordered twice", proj.Order.CancellationReason)

	shipped := seedOrder(t, repo, domain.StatusShipped)
	_, err = svc.Cancel(ctx, buyer, types.CancelInput{OrderID: shipped.ID, Reason: "too late"})
	require.ErrorIs(t, err, domain.ErrCannotCancel)
}

func TestRefund(t *testing.T) {
	repo := ordersmemory.NewRepository()
	svc := NewService(repo)
	ctx := context.Background()

	order := seedOrder(t, repo, domain.StatusDelivered)
	// A zero amount defaults to the full order total.
	proj, err := svc.Refund(ctx, supplier, types.RefundInput{OrderID: order.ID, Reason: "damaged"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusRefunded, proj.Order.Status)
	require.Equal(t, domain.PaymentRefunded, proj.Order.PaymentStatus)
	require.InDelta(t, 66.00, proj.Order.RefundAmount, 1e-9)

	order = seedOrder(t, repo, domain.StatusDelivered)
	proj, err = svc.Refund(ctx, supplier, types.RefundInput{OrderID: order.ID, Amount: 30.00, Reason: "partial"})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPartiallyRefunded, proj.Order.PaymentStatus)

	order = seedOrder(t, repo, domain.StatusProcessing)
	_, err = svc.Refund(ctx, supplier, types.RefundInput{OrderID: order.ID})
	require.ErrorIs(t, err, domain.ErrCannotRefund)

	order = seedOrder(t, repo, domain.StatusDelivered)
	_, err = svc.Refund(ctx, buyer, types.RefundInput{OrderID: order.ID})
	require.ErrorIs(t, err, ErrNotParty)
}
