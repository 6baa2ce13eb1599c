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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/ports"
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

func TestPostgresRepository_SaveAndGetByOwner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cart, err := domain.NewCart("buyer-1", domain.CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, now))
	require.NoError(t, cart.AddLine("prod-2", 1, 45.50, now))

	saved, err := repo.Save(ctx, cart)
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())

	retrieved, err := repo.GetByOwner(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", retrieved.Owner)
	assert.Equal(t, domain.CurrencyUSD, retrieved.Currency)
	assert.Equal(t, 3, retrieved.TotalItems)
	assert.InDelta(t, 65.50, retrieved.TotalAmount, 1e-9)
	// Lines come back in insertion order.
	require.Len(t, retrieved.Items, 2)
	assert.Equal(t, "prod-1", retrieved.Items[0].ProductID)
	assert.Equal(t, "prod-2", retrieved.Items[1].ProductID)
}

func TestPostgresRepository_SaveReplacesLines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cart, err := domain.NewCart("buyer-1", domain.CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, now))
	saved, err := repo.Save(ctx, cart)
	require.NoError(t, err)

	require.NoError(t, saved.SetQuantity("prod-1", 5))
	require.NoError(t, saved.AddLine("prod-2", 1, 45.50, now))
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, 5, updated.Items[0].Quantity)
	assert.Equal(t, 6, updated.TotalItems)

	updated.Clear()
	cleared, err := repo.Save(ctx, updated)
	require.NoError(t, err)
	assert.True(t, cleared.Empty())
	assert.Equal(t, 0, cleared.TotalItems)
}

func TestPostgresRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	cart, err := domain.NewCart("buyer-1", domain.CurrencyUSD)
	require.NoError(t, err)
	require.NoError(t, cart.AddLine("prod-1", 1, 10.00, time.Now().UTC()))
	_, err = repo.Save(ctx, cart)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "buyer-1"))

	_, err = repo.GetByOwner(ctx, "buyer-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "buyer-1"), ports.ErrNotFound)
}

func TestPostgresRepository_PurgeExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := now.Add(-time.Hour)
	live := now.Add(time.Hour)

	guestExpired, err := domain.NewCart(domain.GuestOwner("stale"), domain.CurrencyUSD)
	require.NoError(t, err)
	guestExpired.ExpiresAt = &expired
	require.NoError(t, guestExpired.AddLine("prod-1", 1, 10.00, now))
	_, err = repo.Save(ctx, guestExpired)
	require.NoError(t, err)

	guestLive, err := domain.NewCart(domain.GuestOwner("fresh"), domain.CurrencyUSD)
	require.NoError(t, err)
	guestLive.ExpiresAt = &live
	_, err = repo.Save(ctx, guestLive)
	require.NoError(t, err)

	buyerCart, err := domain.NewCart("buyer-1", domain.CurrencyUSD)
	require.NoError(t, err)
	_, err = repo.Save(ctx, buyerCart)
	require.NoError(t, err)

	purged, err := repo.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.GetByOwner(ctx, domain.GuestOwner("stale"))
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.GetByOwner(ctx, domain.GuestOwner("fresh"))
	assert.NoError(t, err)
	_, err = repo.GetByOwner(ctx, "buyer-1")
	assert.NoError(t, err)
}
