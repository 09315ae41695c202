package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Rajchodisetti/npc-market/internal/market"
	"github.com/Rajchodisetti/npc-market/internal/news"
	"github.com/Rajchodisetti/npc-market/internal/npc"
)

// Memory is an in-process Store used by tests and the sim binary's default
// mode. All maps are guarded by one mutex; the activity log is append-only.
type Memory struct {
	mu           sync.RWMutex
	traders      map[string]npc.Trader
	strategies   map[string]npc.Strategy
	psychologies map[string]npc.Psychology
	positions    map[string]npc.Position // key: traderID + "/" + assetID
	assets       []npc.AssetRef
	candles      map[string][]market.Candle
	events       []news.Event
	activity     []npc.ActivityEntry
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		traders:      map[string]npc.Trader{},
		strategies:   map[string]npc.Strategy{},
		psychologies: map[string]npc.Psychology{},
		positions:    map[string]npc.Position{},
		candles:      map[string][]market.Candle{},
		now:          time.Now,
	}
}

func posKey(traderID, assetID string) string { return traderID + "/" + assetID }

// Seed helpers, used by tests and the sim bootstrap.

func (m *Memory) PutTrader(t npc.Trader, s npc.Strategy, p npc.Psychology) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traders[t.ID] = t
	s.TraderID, p.TraderID = t.ID, t.ID
	m.strategies[t.ID] = s
	m.psychologies[t.ID] = p
}

func (m *Memory) PutAsset(ref npc.AssetRef, candles []market.Candle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, ref)
	m.candles[ref.ID] = candles
}

func (m *Memory) PutEvent(ev news.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// DropContext removes a trader's strategy and psychology, leaving the trader
// active. Tests use it to provoke the missing-context path.
func (m *Memory) DropContext(traderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.strategies, traderID)
	delete(m.psychologies, traderID)
}

func (m *Memory) ListActiveTraders(ctx context.Context) ([]npc.Trader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []npc.Trader
	for _, t := range m.traders {
		if t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetStrategy(ctx context.Context, traderID string) (npc.Strategy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.strategies[traderID]
	if !ok {
		return npc.Strategy{}, fmt.Errorf("no strategy for trader %s", traderID)
	}
	return s, nil
}

func (m *Memory) GetPsychology(ctx context.Context, traderID string) (npc.Psychology, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.psychologies[traderID]
	if !ok {
		return npc.Psychology{}, fmt.Errorf("no psychology for trader %s", traderID)
	}
	return p, nil
}

func (m *Memory) ListPositions(ctx context.Context, traderID string) ([]npc.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []npc.Position
	for _, p := range m.positions {
		if p.TraderID == traderID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

func (m *Memory) ListAssets(ctx context.Context) ([]npc.AssetRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]npc.AssetRef, len(m.assets))
	copy(out, m.assets)
	return out, nil
}

func (m *Memory) CandleHistory(ctx context.Context, assetID string, window time.Duration) ([]market.Candle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := m.now().Add(-window)
	var out []market.Candle
	for _, c := range m.candles[assetID] {
		if !c.PeriodStart.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) RecentEvents(ctx context.Context, window time.Duration) ([]news.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := m.now().Add(-window)
	var out []news.Event
	for _, ev := range m.events {
		if ev.Active && !ev.OccurredAt.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) UpsertPosition(ctx context.Context, pos npc.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[posKey(pos.TraderID, pos.AssetID)] = pos
	return nil
}

func (m *Memory) DeletePosition(ctx context.Context, traderID, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, posKey(traderID, assetID))
	return nil
}

func (m *Memory) UpdateTraderStats(ctx context.Context, traderID string, capital float64, totalTrades int, winRate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.traders[traderID]
	if !ok {
		return fmt.Errorf("no trader %s", traderID)
	}
	t.Capital = capital
	t.TotalTrades = totalTrades
	t.WinRate = winRate
	m.traders[traderID] = t
	return nil
}

func (m *Memory) AppendActivity(ctx context.Context, entry npc.ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, entry)
	return nil
}

// Trader returns the current stored state of one trader.
func (m *Memory) Trader(traderID string) (npc.Trader, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.traders[traderID]
	return t, ok
}

// Activity returns a copy of the append-only activity log.
func (m *Memory) Activity() []npc.ActivityEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]npc.ActivityEntry, len(m.activity))
	copy(out, m.activity)
	return out
}
