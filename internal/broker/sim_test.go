package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimPlaceAndCancel(t *testing.T) {
	sim := NewSim("simx", 0)
	ctx := context.Background()

	px := 50.0
	placed, err := sim.PlaceOrder(ctx, "acct1", OrderSpec{
		Symbol: "ES", Side: Buy, Qty: 2, Type: "LIMIT", Price: &px,
	})
	require.NoError(t, err)
	require.NotEmpty(t, placed.OrderID)
	assert.Equal(t, "open", placed.Status)

	rec, ok := sim.Order(placed.OrderID)
	require.True(t, ok)
	assert.Equal(t, "ES", rec.Symbol)

	ok, err = sim.CancelOrder(ctx, "acct1", placed.OrderID)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, _ = sim.Order(placed.OrderID)
	assert.Equal(t, "cancelled", rec.Status)

	ok, err = sim.CancelOrder(ctx, "acct1", "no-such-order")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSimSafetyOperations(t *testing.T) {
	sim := NewSim("simx", 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := sim.PlaceOrder(ctx, "acct1", OrderSpec{Symbol: "NQ", Side: Sell, Qty: 1, Type: "MARKET"})
		require.NoError(t, err)
	}
	require.Len(t, sim.Positions("acct1"), 3)

	sim.CancelOpenOrders("acct1")
	sim.FlattenPositions("acct1")

	assert.Empty(t, sim.Positions("acct1"))
}

func TestSimBalanceDefaultsAndDebits(t *testing.T) {
	sim := NewSim("simx", 0)

	bal := sim.Balance("fresh")
	assert.Equal(t, simStartingCash, bal.Cash)
	assert.Equal(t, simStartingCash, bal.Equity)

	px := 10.0
	_, err := sim.PlaceOrder(context.Background(), "fresh", OrderSpec{Symbol: "CL", Side: Buy, Qty: 5, Price: &px})
	require.NoError(t, err)
	assert.Equal(t, simStartingCash-50, sim.Balance("fresh").Equity)
}

func TestRegistryUnknownVenue(t *testing.T) {
	reg := NewRegistry()
	reg.Register("sim", NewSim("sim", 0))

	c, err := reg.Get("sim")
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = reg.Get("ibkr")
	var unknown ErrUnknownVenue
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "ibkr", unknown.Venue)
	assert.Equal(t, []string{"sim"}, reg.Venues())
}
