package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rajchodisetti/npc-market/internal/npc"
)

func trader(capital float64) npc.Trader {
	return npc.Trader{ID: "t1", Capital: capital}
}

func TestApply_BuyOpensPosition(t *testing.T) {
	now := time.Now()
	out, err := Apply(trader(1000), nil, Intent{AssetID: "a1", Side: npc.SideBuy, Quantity: 4, Price: 50}, now)
	require.NoError(t, err)

	assert.Equal(t, 800.0, out.Trader.Capital)
	assert.Equal(t, 1, out.Trader.TotalTrades)
	assert.Equal(t, 4, out.Position.Quantity)
	assert.Equal(t, 50.0, out.Position.EntryPrice)
	assert.Equal(t, now, out.Position.EntryDate)
	assert.False(t, out.PositionClosed)
	assert.Equal(t, 200.0, out.Notional)
	assert.Equal(t, string(npc.SideBuy), out.Activity.Action)
}

func TestApply_BuyAveragesEntryPrice(t *testing.T) {
	now := time.Now()
	first, err := Apply(trader(10000), nil, Intent{AssetID: "a1", Side: npc.SideBuy, Quantity: 10, Price: 100}, now)
	require.NoError(t, err)

	second, err := Apply(first.Trader, []npc.Position{first.Position},
		Intent{AssetID: "a1", Side: npc.SideBuy, Quantity: 10, Price: 200}, now)
	require.NoError(t, err)

	assert.Equal(t, 20, second.Position.Quantity)
	assert.InDelta(t, 150.0, second.Position.EntryPrice, 1e-9)
	assert.Equal(t, 7000.0, second.Trader.Capital)
}

func TestApply_BuyRejectsInsufficientCapital(t *testing.T) {
	tr := trader(100)
	_, err := Apply(tr, nil, Intent{AssetID: "a1", Side: npc.SideBuy, Quantity: 3, Price: 50}, time.Now())
	require.Error(t, err)
	assert.Equal(t, npc.KindInsufficientCapital, npc.KindOf(err))
	// snapshot unchanged
	assert.Equal(t, 100.0, tr.Capital)
	assert.Zero(t, tr.TotalTrades)
}

func TestApply_SellRealizesPnLAndWinRate(t *testing.T) {
	tr := trader(0)
	tr.TotalTrades = 1
	tr.WinRate = 0
	positions := []npc.Position{{TraderID: "t1", AssetID: "a1", Quantity: 10, EntryPrice: 100}}

	out, err := Apply(tr, positions, Intent{AssetID: "a1", Side: npc.SideSell, Quantity: 4, Price: 120}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 480.0, out.Trader.Capital)
	assert.Equal(t, 2, out.Trader.TotalTrades)
	// (0*1 + 100) / 2
	assert.InDelta(t, 50.0, out.Trader.WinRate, 1e-9)
	assert.InDelta(t, 80.0, out.RealizedPnL, 1e-9)
	assert.Equal(t, 6, out.Position.Quantity)
	assert.False(t, out.PositionClosed)
}

func TestApply_SellAtLossLowersWinRate(t *testing.T) {
	tr := trader(0)
	tr.TotalTrades = 3
	tr.WinRate = 100
	positions := []npc.Position{{TraderID: "t1", AssetID: "a1", Quantity: 5, EntryPrice: 100}}

	out, err := Apply(tr, positions, Intent{AssetID: "a1", Side: npc.SideSell, Quantity: 5, Price: 90}, time.Now())
	require.NoError(t, err)

	// (100*3 + 0) / 4
	assert.InDelta(t, 75.0, out.Trader.WinRate, 1e-9)
	assert.InDelta(t, -50.0, out.RealizedPnL, 1e-9)
	assert.True(t, out.PositionClosed)
	assert.Zero(t, out.Position.Quantity)
}

func TestApply_SellRejectsOversizedQuantity(t *testing.T) {
	tr := trader(500)
	positions := []npc.Position{{TraderID: "t1", AssetID: "a1", Quantity: 3, EntryPrice: 100}}

	_, err := Apply(tr, positions, Intent{AssetID: "a1", Side: npc.SideSell, Quantity: 4, Price: 100}, time.Now())
	require.Error(t, err)
	assert.Equal(t, npc.KindInsufficientPosition, npc.KindOf(err))
	assert.Equal(t, 500.0, tr.Capital)
	assert.Equal(t, 3, positions[0].Quantity)
}

func TestApply_SellWithoutPositionFails(t *testing.T) {
	_, err := Apply(trader(500), nil, Intent{AssetID: "a1", Side: npc.SideSell, Quantity: 1, Price: 100}, time.Now())
	require.Error(t, err)
	assert.Equal(t, npc.KindInsufficientPosition, npc.KindOf(err))
}

func TestApply_UnknownSideFails(t *testing.T) {
	_, err := Apply(trader(500), nil, Intent{AssetID: "a1", Side: npc.Side("hold"), Quantity: 1, Price: 1}, time.Now())
	require.Error(t, err)
	assert.Equal(t, npc.KindUnexpected, npc.KindOf(err))
}
