// Package cycle drives one full decision-and-execution pass over all active
// NPC traders: a gathering phase that loads traders and computes the shared
// market view, then an executing phase that decides and trades for each
// trader with per-trader failure isolation.
package cycle

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Rajchodisetti/npc-market/internal/decision"
	"github.com/Rajchodisetti/npc-market/internal/executor"
	"github.com/Rajchodisetti/npc-market/internal/market"
	"github.com/Rajchodisetti/npc-market/internal/news"
	"github.com/Rajchodisetti/npc-market/internal/npc"
	"github.com/Rajchodisetti/npc-market/internal/observ"
	"github.com/Rajchodisetti/npc-market/internal/storage"
)

// PriceSource quotes the current price of an asset.
type PriceSource interface {
	CurrentPrice(ctx context.Context, assetID string) (float64, error)
}

// Config tunes one runner.
type Config struct {
	Window  time.Duration // trailing window for candles and events
	Workers int           // executing-phase fan-out; 1 = sequential
	Seed    int64         // rng seed for archetypes that pick at random
}

// Runner orchestrates trading cycles. Construct it with its collaborators;
// there is no package-level instance. Run never overlaps with itself: a new
// cycle waits for the previous executing phase to finish so capital
// mutations are not double counted.
type Runner struct {
	store  storage.Store
	prices PriceSource
	eval   decision.Evaluator
	cfg    Config

	runMu sync.Mutex
	now   func() time.Time
}

func NewRunner(store storage.Store, prices PriceSource, eval decision.Evaluator, cfg Config) *Runner {
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{store: store, prices: prices, eval: eval, cfg: cfg, now: time.Now}
}

// Run executes one full cycle and always returns a summary. The only fatal
// error is a failure to list active traders; everything after that is
// isolated per trader, counted, and carried in the summary. Cancellation is
// honored between traders and returns the partial summary with ctx's error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	started := r.now()
	summary := newSummary()

	traders, err := r.store.ListActiveTraders(ctx)
	if err != nil {
		return *summary, fmt.Errorf("list active traders: %w", err)
	}
	observ.SetGauge("npc_active_traders", float64(len(traders)), nil)
	observ.Log("cycle_start", map[string]any{"traders": len(traders)})

	if len(traders) == 0 {
		summary.Duration = r.now().Sub(started)
		return *summary, nil
	}

	intel, assetTypes := r.gatherIntelligence(ctx, summary)
	impacts := r.gatherImpacts(ctx, summary)

	r.execute(ctx, traders, intel, assetTypes, impacts, summary)

	summary.Duration = r.now().Sub(started)
	observ.RecordDuration("cycle_duration", summary.Duration, nil)
	observ.Log("cycle_done", map[string]any{
		"trades":        summary.TradesExecuted,
		"buys":          summary.BuyOrders,
		"sells":         summary.SellOrders,
		"failed_orders": summary.FailedOrders,
		"notional":      summary.TotalValueTraded,
	})
	return *summary, ctx.Err()
}

// gatherIntelligence computes the per-asset snapshot shared read-only by
// every trader this cycle. An asset whose history or quote cannot be loaded
// is dropped from the cycle, not fatal.
func (r *Runner) gatherIntelligence(ctx context.Context, summary *Summary) ([]market.Intelligence, map[string]string) {
	assets, err := r.store.ListAssets(ctx)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("list assets: %v", err))
		return nil, nil
	}

	intel := make([]market.Intelligence, 0, len(assets))
	types := make(map[string]string, len(assets))
	for _, a := range assets {
		types[a.ID] = a.Type
		price, err := r.prices.CurrentPrice(ctx, a.ID)
		if err != nil {
			observ.Log("asset_skip", map[string]any{"asset": a.ID, "error": err.Error()})
			continue
		}
		candles, err := r.store.CandleHistory(ctx, a.ID, r.cfg.Window)
		if err != nil {
			observ.Log("asset_skip", map[string]any{"asset": a.ID, "error": err.Error()})
			continue
		}
		intel = append(intel, market.Analyze(a.ID, price, candles))
	}
	return intel, types
}

func (r *Runner) gatherImpacts(ctx context.Context, summary *Summary) []news.Impact {
	events, err := r.store.RecentEvents(ctx, r.cfg.Window)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("recent events: %v", err))
		return nil
	}
	return news.Expand(events, r.now(), r.cfg.Window)
}

// execute fans traders out over a bounded worker pool. Each worker owns a
// partial summary and its own rng; partials are merged once all workers
// return. The intelligence and impact slices are immutable from here on.
func (r *Runner) execute(ctx context.Context, traders []npc.Trader, intel []market.Intelligence, assetTypes map[string]string, impacts []news.Impact, summary *Summary) {
	workers := r.cfg.Workers
	if workers > len(traders) {
		workers = len(traders)
	}

	jobs := make(chan npc.Trader)
	partials := make([]*Summary, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		partial := newSummary()
		partials[w] = partial
		rng := rand.New(rand.NewSource(r.cfg.Seed + int64(w)))

		wg.Add(1)
		go func() {
			defer wg.Done()
			for tr := range jobs {
				r.processTrader(ctx, tr, intel, assetTypes, impacts, partial, rng)
			}
		}()
	}

feed:
	for _, tr := range traders {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- tr:
		}
	}
	close(jobs)
	wg.Wait()

	for _, p := range partials {
		summary.merge(p)
	}
}

// processTrader runs one trader end to end: context load, decision,
// execution, persistence. Any failure, including a panic, is converted into
// a counted non-fatal error on the worker's partial summary.
func (r *Runner) processTrader(ctx context.Context, tr npc.Trader, intel []market.Intelligence, assetTypes map[string]string, impacts []news.Impact, partial *Summary, rng *rand.Rand) {
	defer func() {
		if rec := recover(); rec != nil {
			partial.recordFailure(npc.NewUnexpectedError(tr.ID, fmt.Sprintf("panic: %v", rec), nil))
			observ.IncCounter("npc_failed_orders_total", nil)
		}
	}()

	partial.ByArchetype[tr.Archetype]++

	tc, err := r.loadContext(ctx, tr, assetTypes)
	if err != nil {
		// missing context skips the trader with no activity entry
		partial.recordFailure(err)
		observ.IncCounter("npc_failed_orders_total", nil)
		return
	}

	d := decision.Decide(tc, intel, impacts, r.eval, rng)
	if !d.Traded {
		if d.AssetID != "" {
			r.appendActivity(ctx, npc.ActivityEntry{
				TraderID:  tr.ID,
				Action:    npc.ActionAnalyze,
				AssetID:   d.AssetID,
				Reasoning: d.Reasoning,
				CreatedAt: r.now(),
			}, partial)
		}
		return
	}

	outcome, err := executor.Apply(tr, tc.Positions, executor.Intent{
		AssetID:   d.AssetID,
		Side:      d.Side,
		Quantity:  d.Quantity,
		Price:     d.Price,
		Reasoning: d.Reasoning,
	}, r.now())
	if err != nil {
		partial.recordFailure(err)
		observ.IncCounter("npc_failed_orders_total", nil)
		r.appendActivity(ctx, npc.ActivityEntry{
			TraderID:  tr.ID,
			Action:    npc.ActionAnalyze,
			AssetID:   d.AssetID,
			Reasoning: fmt.Sprintf("Failed to execute %s: %v", d.Side, err),
			CreatedAt: r.now(),
		}, partial)
		return
	}

	if err := r.persist(ctx, outcome); err != nil {
		partial.recordFailure(npc.NewUnexpectedError(tr.ID, "persist trade", err))
		observ.IncCounter("npc_failed_orders_total", nil)
		return
	}

	partial.TradesExecuted++
	if d.Side == npc.SideBuy {
		partial.BuyOrders++
	} else {
		partial.SellOrders++
	}
	partial.TotalVolume += d.Quantity
	partial.TotalValueTraded += outcome.Notional

	observ.IncCounter("npc_trades_total", map[string]string{"side": string(d.Side)})
	observ.Log("npc_trade", map[string]any{
		"trader":   tr.ID,
		"side":     string(d.Side),
		"asset":    d.AssetID,
		"quantity": d.Quantity,
		"price":    d.Price,
	})
}

func (r *Runner) loadContext(ctx context.Context, tr npc.Trader, assetTypes map[string]string) (decision.TraderContext, error) {
	strategy, err := r.store.GetStrategy(ctx, tr.ID)
	if err != nil {
		return decision.TraderContext{}, npc.NewMissingContextError(tr.ID, fmt.Sprintf("strategy: %v", err))
	}
	psychology, err := r.store.GetPsychology(ctx, tr.ID)
	if err != nil {
		return decision.TraderContext{}, npc.NewMissingContextError(tr.ID, fmt.Sprintf("psychology: %v", err))
	}
	positions, err := r.store.ListPositions(ctx, tr.ID)
	if err != nil {
		return decision.TraderContext{}, npc.NewUnexpectedError(tr.ID, "load positions", err)
	}
	return decision.TraderContext{
		Trader:      tr,
		Strategy:    strategy,
		Psychology:  psychology,
		Personality: npc.BuildPersonality(tr, strategy, psychology),
		Positions:   positions,
		AssetTypes:  assetTypes,
	}, nil
}

// persist writes one outcome: stats first, then the position, then the
// audit entry. Per-agent atomicity is the guarantee here; there is no
// cross-agent ordering.
func (r *Runner) persist(ctx context.Context, out executor.Outcome) error {
	tr := out.Trader
	if err := r.store.UpdateTraderStats(ctx, tr.ID, tr.Capital, tr.TotalTrades, tr.WinRate); err != nil {
		return err
	}
	if out.PositionClosed {
		if err := r.store.DeletePosition(ctx, out.Position.TraderID, out.Position.AssetID); err != nil {
			return err
		}
	} else {
		if err := r.store.UpsertPosition(ctx, out.Position); err != nil {
			return err
		}
	}
	return r.store.AppendActivity(ctx, out.Activity)
}

func (r *Runner) appendActivity(ctx context.Context, entry npc.ActivityEntry, partial *Summary) {
	if err := r.store.AppendActivity(ctx, entry); err != nil {
		partial.Errors = append(partial.Errors, fmt.Sprintf("append activity for %s: %v", entry.TraderID, err))
	}
}
