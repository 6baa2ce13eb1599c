//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	cartpostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/persistence/postgres"
	cartdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/checkout/ports"
	orderspostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/adapters/persistence/postgres"
	ordersdomain "github.com/Apurer/go-gin-marketplace-server/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/platform/migrations"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("marketplace_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func confirmedOrder(buyerID string) *ordersdomain.Order {
	addr := ordersdomain.Address{Street: "1 Dock Rd", City: "Springfield"}
	order := &ordersdomain.Order{
		ID:          uuid.NewString(),
		OrderNumber: "ORD-20260901120000-" + uuid.NewString()[:6],
		BuyerID:     buyerID,
		Items: []ordersdomain.Item{
			{ProductID: "prod-1", ProductName: "Bolt Pack", Quantity: 2, UnitPrice: 10.00, SupplierID: "sup-1"},
		},
		ShippingAddress: addr,
		BillingAddress:  addr,
		PaymentMethod:   ordersdomain.MethodCreditCard,
		Status:          ordersdomain.StatusConfirmed,
		PaymentStatus:   ordersdomain.PaymentPaid,
		Currency:        "USD",
		Subtotal:        20.00,
		Tax:             2.00,
		TotalAmount:     22.00,
	}
	order.AppendCreated("order created from cart", buyerID, time.Now().UTC())
	return order
}

func TestStore_CreateOrderAndClearCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	carts := cartpostgres.NewRepository(db)
	orders := orderspostgres.NewRepository(db)
	store := NewStore(db, orders)

	cart, err := cartdomain.NewCart("buyer-1", cartdomain.CurrencyUSD)
	require.NoError(t, err)
	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, time.Now().UTC()))
	_, err = carts.Save(ctx, cart)
	require.NoError(t, err)

	order := confirmedOrder("buyer-1")
	saved, err := store.CreateOrderAndClearCart(ctx, order, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, saved.OrderNumber)

	stored, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ordersdomain.StatusConfirmed, stored.Status)

	emptied, err := carts.GetByOwner(ctx, "buyer-1")
	require.NoError(t, err)
	assert.True(t, emptied.Empty())
	assert.Equal(t, 0, emptied.TotalItems)
}

func TestStore_AbortLeavesCartUntouched(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	carts := cartpostgres.NewRepository(db)
	orders := orderspostgres.NewRepository(db)
	store := NewStore(db, orders)

	cart, err := cartdomain.NewCart("buyer-1", cartdomain.CurrencyUSD)
	require.NoError(t, err)
	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, time.Now().UTC()))
	_, err = carts.Save(ctx, cart)
	require.NoError(t, err)

	first := confirmedOrder("buyer-1")
	_, err = store.CreateOrderAndClearCart(ctx, first, "buyer-1")
	require.NoError(t, err)

	// Refill the cart, then force a rollback with a duplicate order number.
	refill, err := carts.GetByOwner(ctx, "buyer-1")
	require.NoError(t, err)
	require.NoError(t, refill.AddLine("prod-2", 1, 45.50, time.Now().UTC()))
	_, err = carts.Save(ctx, refill)
	require.NoError(t, err)

	conflicting := confirmedOrder("buyer-1")
	conflicting.OrderNumber = first.OrderNumber
	_, err = store.CreateOrderAndClearCart(ctx, conflicting, "buyer-1")
	require.Error(t, err)

	intact, err := carts.GetByOwner(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, intact.Items, 1)
	assert.Equal(t, 1, intact.TotalItems)
}

func TestIdempotencyStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	idem := NewIdempotencyStore(db)

	missing, err := idem.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := idem.Save(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-a", OrderID: "ord-1"})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	// Replaying the same request returns the stored record.
	replayed, err := idem.Save(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-a", OrderID: "ord-1"})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", replayed.OrderID)

	// The same key with a different payload is a conflict.
	_, err = idem.Save(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-b", OrderID: "ord-2"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	record, err := idem.Get(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "hash-a", record.RequestHash)
}
