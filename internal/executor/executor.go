// Package executor applies one trade intent to a trader's capital and
// position ledger. It is a pure state transition: callers pass the current
// snapshot in and persist the returned state, which keeps concurrent cycles
// from mutating shared slices in place.
package executor

import (
	"time"

	"github.com/Rajchodisetti/npc-market/internal/npc"
)

// Intent is a fully specified trade to apply.
type Intent struct {
	AssetID   string
	Side      npc.Side
	Quantity  int
	Price     float64
	Reasoning string
}

// Outcome is the new state produced by a successful trade. The caller
// persists Trader, then either upserts Position or deletes it when
// PositionClosed is set, then appends Activity.
type Outcome struct {
	Trader         npc.Trader
	Position       npc.Position
	PositionClosed bool
	RealizedPnL    float64
	Notional       float64
	Activity       npc.ActivityEntry
}

// Apply executes one intent against the trader's snapshot. Failures return a
// typed TradeError and leave the inputs untouched.
func Apply(tr npc.Trader, positions []npc.Position, in Intent, now time.Time) (Outcome, error) {
	switch in.Side {
	case npc.SideBuy:
		return applyBuy(tr, positions, in, now)
	case npc.SideSell:
		return applySell(tr, positions, in, now)
	default:
		return Outcome{}, npc.NewUnexpectedError(tr.ID, "unknown trade side "+string(in.Side), nil)
	}
}

func applyBuy(tr npc.Trader, positions []npc.Position, in Intent, now time.Time) (Outcome, error) {
	cost := float64(in.Quantity) * in.Price
	if cost > tr.Capital {
		return Outcome{}, npc.NewInsufficientCapitalError(tr.ID, in.AssetID, cost, tr.Capital)
	}

	tr.Capital -= cost
	tr.TotalTrades++

	pos, held := findPosition(positions, in.AssetID)
	if held {
		// volume-weighted average entry across the old lot and this buy
		oldQty := float64(pos.Quantity)
		pos.EntryPrice = (oldQty*pos.EntryPrice + cost) / (oldQty + float64(in.Quantity))
		pos.Quantity += in.Quantity
	} else {
		pos = npc.Position{
			TraderID:   tr.ID,
			AssetID:    in.AssetID,
			Quantity:   in.Quantity,
			EntryPrice: in.Price,
			EntryDate:  now,
		}
	}

	return Outcome{
		Trader:   tr,
		Position: pos,
		Notional: cost,
		Activity: activityFor(tr.ID, in, now),
	}, nil
}

func applySell(tr npc.Trader, positions []npc.Position, in Intent, now time.Time) (Outcome, error) {
	pos, held := findPosition(positions, in.AssetID)
	if !held || pos.Quantity < in.Quantity {
		return Outcome{}, npc.NewInsufficientPositionError(tr.ID, in.AssetID, in.Quantity, pos.Quantity)
	}

	proceeds := float64(in.Quantity) * in.Price
	pnl := float64(in.Quantity) * (in.Price - pos.EntryPrice)
	win := pnl > 0

	tr.Capital += proceeds
	oldTrades := tr.TotalTrades
	tr.TotalTrades++
	// Running win rate over all sells; one win/loss classification per sell,
	// matching the persisted statistic's historical meaning.
	score := 0.0
	if win {
		score = 100
	}
	tr.WinRate = (tr.WinRate*float64(oldTrades) + score) / float64(tr.TotalTrades)

	pos.Quantity -= in.Quantity

	return Outcome{
		Trader:         tr,
		Position:       pos,
		PositionClosed: pos.Quantity == 0,
		RealizedPnL:    pnl,
		Notional:       proceeds,
		Activity:       activityFor(tr.ID, in, now),
	}, nil
}

func findPosition(positions []npc.Position, assetID string) (npc.Position, bool) {
	for _, p := range positions {
		if p.AssetID == assetID {
			return p, true
		}
	}
	return npc.Position{}, false
}

func activityFor(traderID string, in Intent, now time.Time) npc.ActivityEntry {
	return npc.ActivityEntry{
		TraderID:  traderID,
		Action:    string(in.Side),
		AssetID:   in.AssetID,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Reasoning: in.Reasoning,
		CreatedAt: now,
	}
}
