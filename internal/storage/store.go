// Package storage defines the persistence surface the trading cycle consumes
// and provides Postgres and in-memory implementations of it.
package storage

import (
	"context"
	"time"

	"github.com/Rajchodisetti/npc-market/internal/market"
	"github.com/Rajchodisetti/npc-market/internal/news"
	"github.com/Rajchodisetti/npc-market/internal/npc"
)

// Store is the storage collaborator for one trading cycle. Implementations
// must be safe for concurrent use: the executing phase fans trader
// persistence out across workers.
type Store interface {
	ListActiveTraders(ctx context.Context) ([]npc.Trader, error)
	GetStrategy(ctx context.Context, traderID string) (npc.Strategy, error)
	GetPsychology(ctx context.Context, traderID string) (npc.Psychology, error)
	ListPositions(ctx context.Context, traderID string) ([]npc.Position, error)

	ListAssets(ctx context.Context) ([]npc.AssetRef, error)
	CandleHistory(ctx context.Context, assetID string, window time.Duration) ([]market.Candle, error)
	RecentEvents(ctx context.Context, window time.Duration) ([]news.Event, error)

	UpsertPosition(ctx context.Context, pos npc.Position) error
	DeletePosition(ctx context.Context, traderID, assetID string) error
	UpdateTraderStats(ctx context.Context, traderID string, capital float64, totalTrades int, winRate float64) error
	AppendActivity(ctx context.Context, entry npc.ActivityEntry) error
}
