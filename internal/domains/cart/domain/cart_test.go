package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCart_Defaults(t *testing.T) {
	cart, err := NewCart("buyer-1", "")
	require.NoError(t, err)
	require.Equal(t, "buyer-1", cart.Owner)
	require.Equal(t, DefaultCurrency, cart.Currency)
	require.True(t, cart.Empty())

	_, err = NewCart("   ", CurrencyUSD)
	require.ErrorIs(t, err, ErrInvalidOwner)

	_, err = NewCart("buyer-1", "JPY")
	require.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddLine_MergesExistingLine(t *testing.T) {
	cart, err := NewCart("buyer-1", CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()

	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, now))
	require.NoError(t, cart.AddLine("prod-1", 3, 9.50, now))

	line, ok := cart.Line("prod-1")
	require.True(t, ok)
	require.Equal(t, 5, line.Quantity)
	require.Equal(t, 9.50, line.UnitPrice)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 5, cart.TotalItems)
	require.InDelta(t, 47.50, cart.TotalAmount, 1e-9)
}

func TestAddLine_RejectsInvalidInput(t *testing.T) {
	cart, err := NewCart("buyer-1", CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()

	require.ErrorIs(t, cart.AddLine("prod-1", 0, 10.00, now), ErrInvalidQuantity)
	require.ErrorIs(t, cart.AddLine("prod-1", 1, -0.01, now), ErrInvalidPrice)
	require.True(t, cart.Empty())
}

func TestSetQuantity(t *testing.T) {
	cart, err := NewCart("buyer-1", CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, now))

	require.NoError(t, cart.SetQuantity("prod-1", 7))
	line, _ := cart.Line("prod-1")
	require.Equal(t, 7, line.Quantity)
	require.Equal(t, 7, cart.TotalItems)

	// Zero removes the line rather than leaving an empty entry.
	require.NoError(t, cart.SetQuantity("prod-1", 0))
	require.True(t, cart.Empty())
	require.Equal(t, 0, cart.TotalItems)
	require.Equal(t, 0.0, cart.TotalAmount)

	require.ErrorIs(t, cart.SetQuantity("prod-1", 1), ErrLineNotFound)
}

func TestRemoveLine_Idempotent(t *testing.T) {
	cart, err := NewCart("buyer-1", CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, now))
	require.NoError(t, cart.AddLine("prod-2", 1, 5.00, now))

	cart.RemoveLine("prod-1")
	cart.RemoveLine("prod-1")
	require.Len(t, cart.Items, 1)
	require.Equal(t, 1, cart.TotalItems)
	require.InDelta(t, 5.00, cart.TotalAmount, 1e-9)
}

func TestClear_KeepsCartDocument(t *testing.T) {
	cart, err := NewCart("buyer-1", CurrencyEUR)
	require.NoError(t, err)
	require.NoError(t, cart.AddLine("prod-1", 2, 10.00, time.Now().UTC()))

	cart.Clear()
	require.True(t, cart.Empty())
	require.Equal(t, 0, cart.TotalItems)
	require.Equal(t, CurrencyEUR, cart.Currency)
}

func TestGuestOwner(t *testing.T) {
	owner := GuestOwner("abc123")
	require.Equal(t, "guest:abc123", owner)
	require.True(t, IsGuestOwner(owner))
	require.False(t, IsGuestOwner("buyer-1"))
}

func TestExpired(t *testing.T) {
	cart, err := NewCart(GuestOwner("abc"), CurrencyUSD)
	require.NoError(t, err)
	now := time.Now().UTC()
	require.False(t, cart.Expired(now))

	expires := now.Add(-time.Minute)
	cart.ExpiresAt = &expires
	require.True(t, cart.Expired(now))

	expires = now.Add(time.Minute)
	require.False(t, cart.Expired(now))
}
