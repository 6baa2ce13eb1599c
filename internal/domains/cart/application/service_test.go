package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/memory"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
	catalogmemory "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/adapters/memory"
	catalogports "github.com/Apurer/go-gin-marketplace-server/internal/domains/catalog/ports"
)

func newTestCatalog() *catalogmemory.Catalog {
	return catalogmemory.NewCatalog(
		catalogports.Product{ID: "prod-1", Name: "Bolt Pack", Price: 10.00, Status: catalogports.ProductActive, MinOrderQuantity: 1, Stock: 100, SupplierID: "sup-1"},
		catalogports.Product{ID: "prod-2", Name: "Sheet Metal", Price: 45.50, Status: catalogports.ProductActive, MinOrderQuantity: 5, Stock: 20, SupplierID: "sup-1"},
		catalogports.Product{ID: "prod-3", Name: "Retired Widget", Price: 3.00, Status: catalogports.ProductInactive, MinOrderQuantity: 1, Stock: 50, SupplierID: "sup-2"},
	)
}

func TestAddItem_Success(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())

	cart, err := svc.AddItem(context.Background(), "buyer-1", "prod-1", 2, 10.00)
	require.NoError(t, err)
	require.Equal(t, "buyer-1", cart.Owner)
	require.Equal(t, 2, cart.TotalItems)
	require.InDelta(t, 20.00, cart.TotalAmount, 1e-9)
	require.Nil(t, cart.ExpiresAt)
}

func TestAddItem_GuestCartGetsTTL(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog(), WithGuestTTL(time.Hour))

	cart, err := svc.AddItem(context.Background(), domain.GuestOwner("tok-1"), "prod-1", 1, 10.00)
	require.NoError(t, err)
	require.NotNil(t, cart.ExpiresAt)
	require.WithinDuration(t, time.Now().UTC().Add(time.Hour), *cart.ExpiresAt, 5*time.Second)
}

func TestAddItem_UnknownOrInactiveProduct(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())

	_, err := svc.AddItem(context.Background(), "buyer-1", "prod-missing", 1, 10.00)
	require.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.AddItem(context.Background(), "buyer-1", "prod-3", 1, 3.00)
	require.ErrorIs(t, err, ErrProductUnavailable)
}

func TestAddItem_MinimumQuantityCountsExistingLine(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())

	// prod-2 requires at least 5 per order.
	_, err := svc.AddItem(context.Background(), "buyer-1", "prod-2", 3, 45.50)
	require.ErrorIs(t, err, ErrBelowMinQuantity)

	_, err = svc.AddItem(context.Background(), "buyer-1", "prod-2", 5, 45.50)
	require.NoError(t, err)

	// Topping up an existing line is judged on the merged quantity.
	cart, err := svc.AddItem(context.Background(), "buyer-1", "prod-2", 2, 45.50)
	require.NoError(t, err)
	line, ok := cart.Line("prod-2")
	require.True(t, ok)
	require.Equal(t, 7, line.Quantity)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())

	_, err := svc.AddItem(context.Background(), "buyer-1", "prod-2", 21, 45.50)
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.AddItem(context.Background(), "buyer-1", "prod-2", 15, 45.50)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), "buyer-1", "prod-2", 6, 45.50)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())

	_, err := svc.AddItem(context.Background(), "buyer-1", "prod-1", 0, 10.00)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetCart_CreatesEmptyCartOnFirstAccess(t *testing.T) {
	repo := cartmemory.NewRepository()
	svc := NewService(repo, newTestCatalog())

	cart, err := svc.GetCart(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.True(t, cart.Empty())

	stored, err := repo.GetByOwner(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.Equal(t, cart.Owner, stored.Owner)
}

func TestUpdateQuantity(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())
	_, err := svc.AddItem(context.Background(), "buyer-1", "prod-1", 2, 10.00)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(context.Background(), "buyer-1", "prod-1", 4)
	require.NoError(t, err)
	require.Equal(t, 4, cart.TotalItems)

	cart, err = svc.UpdateQuantity(context.Background(), "buyer-1", "prod-1", 0)
	require.NoError(t, err)
	require.True(t, cart.Empty())

	_, err = svc.UpdateQuantity(context.Background(), "buyer-1", "prod-1", 1)
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestClearCart(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())
	_, err := svc.AddItem(context.Background(), "buyer-1", "prod-1", 2, 10.00)
	require.NoError(t, err)

	cart, err := svc.ClearCart(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.True(t, cart.Empty())

	again, err := svc.GetCart(context.Background(), "buyer-1")
	require.NoError(t, err)
	require.True(t, again.Empty())
}

func TestMergeGuestCart(t *testing.T) {
	repo := cartmemory.NewRepository()
	svc := NewService(repo, newTestCatalog())
	ctx := context.Background()

	guestOwner := domain.GuestOwner("tok-1")
	_, err := svc.AddItem(ctx, guestOwner, "prod-1", 2, 10.00)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "buyer-1", "prod-1", 1, 10.00)
	require.NoError(t, err)

	merged, err := svc.MergeGuestCart(ctx, "buyer-1", "tok-1")
	require.NoError(t, err)
	line, ok := merged.Line("prod-1")
	require.True(t, ok)
	require.Equal(t, 3, line.Quantity)

	// The guest cart is gone after a successful merge.
	_, err = repo.GetByOwner(ctx, guestOwner)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestMergeGuestCart_IntoEmptyBuyerCart(t *testing.T) {
	repo := cartmemory.NewRepository()
	svc := NewService(repo, newTestCatalog())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, domain.GuestOwner("tok-2"), "prod-1", 1, 10.00)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, domain.GuestOwner("tok-2"), "prod-2", 5, 45.50)
	require.NoError(t, err)

	merged, err := svc.MergeGuestCart(ctx, "buyer-2", "tok-2")
	require.NoError(t, err)
	require.Len(t, merged.Items, 2)
	first, ok := merged.Line("prod-1")
	require.True(t, ok)
	require.Equal(t, 1, first.Quantity)
	second, ok := merged.Line("prod-2")
	require.True(t, ok)
	require.Equal(t, 5, second.Quantity)
}

func TestMergeGuestCart_MissingGuestReturnsBuyerCart(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "buyer-1", "prod-1", 2, 10.00)
	require.NoError(t, err)

	merged, err := svc.MergeGuestCart(ctx, "buyer-1", "expired-token")
	require.NoError(t, err)
	require.Equal(t, "buyer-1", merged.Owner)
	require.Equal(t, 2, merged.TotalItems)
}

func TestValidateCart_ReportsOneIssuePerLine(t *testing.T) {
	repo := cartmemory.NewRepository()
	catalog := newTestCatalog()
	svc := NewService(repo, catalog)
	ctx := context.Background()

	cart, err := domain.NewCart("buyer-1", domain.CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, cart.AddLine("prod-gone", 1, 2.00, now))
	require.NoError(t, cart.AddLine("prod-3", 1, 3.00, now))
	require.NoError(t, cart.AddLine("prod-2", 2, 45.50, now))
	require.NoError(t, cart.AddLine("prod-1", 200, 10.00, now))
	require.NoError(t, cart.AddLine("prod-ok", 1, 9.00, now))
	catalog.Put(catalogports.Product{ID: "prod-ok", Name: "Repriced", Price: 11.00, Status: catalogports.ProductActive, MinOrderQuantity: 1, Stock: 10, SupplierID: "sup-1"})
	_, err = repo.Save(ctx, cart)
	require.NoError(t, err)

	issues, err := svc.ValidateCart(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, issues, 5)
	byProduct := map[string]ports.Issue{}
	for _, issue := range issues {
		byProduct[issue.ProductID] = issue
	}
	require.Equal(t, ports.IssueProductNotFound, byProduct["prod-gone"].Code)
	require.Equal(t, ports.IssueProductInactive, byProduct["prod-3"].Code)
	require.Equal(t, ports.IssueMinQuantityNotMet, byProduct["prod-2"].Code)
	require.Equal(t, ports.IssueInsufficientStock, byProduct["prod-1"].Code)
	require.Equal(t, ports.IssuePriceChanged, byProduct["prod-ok"].Code)
	require.Equal(t, 11.00, byProduct["prod-ok"].CurrentPrice)
}

func TestValidateCart_CleanCart(t *testing.T) {
	svc := NewService(cartmemory.NewRepository(), newTestCatalog())
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "buyer-1", "prod-1", 2, 10.00)
	require.NoError(t, err)

	issues, err := svc.ValidateCart(ctx, "buyer-1")
	require.NoError(t, err)
	require.Empty(t, issues)
}
