package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Rajchodisetti/npc-market/internal/adapters"
	"github.com/Rajchodisetti/npc-market/internal/config"
	"github.com/Rajchodisetti/npc-market/internal/market"
	"github.com/Rajchodisetti/npc-market/internal/news"
	"github.com/Rajchodisetti/npc-market/internal/npc"
	"github.com/Rajchodisetti/npc-market/internal/storage"
)

var assetTypes = []string{"characters", "issues", "creators", "publishers", "etfs", "bonds", "options"}

// seedSim populates the in-memory store with a reproducible market: traders
// spread round-robin across the archetypes, assets with a day of hourly
// candles, and a handful of active events.
func seedSim(mem *storage.Memory, prices *adapters.SimPriceSource, cfg config.Sim) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	now := time.Now()

	assets := make([]npc.AssetRef, 0, cfg.Assets)
	for i := 0; i < cfg.Assets; i++ {
		ref := npc.AssetRef{
			ID:   fmt.Sprintf("asset-%03d", i+1),
			Type: assetTypes[i%len(assetTypes)],
		}
		assets = append(assets, ref)

		base := 20 + rng.Float64()*180
		price := base
		candles := make([]market.Candle, 0, 24)
		for h := 23; h >= 0; h-- {
			price *= 1 + rng.NormFloat64()*0.015
			if price < 1 {
				price = 1
			}
			candles = append(candles, market.Candle{
				AssetID:     ref.ID,
				Open:        price,
				High:        price * 1.01,
				Low:         price * 0.99,
				Close:       price,
				Volume:      float64(1000 + rng.Intn(9000)),
				PeriodStart: now.Add(-time.Duration(h) * time.Hour),
			})
		}
		mem.PutAsset(ref, candles)
		prices.SetPrice(ref.ID, candles[len(candles)-1].Close)
	}

	archetypes := npc.Archetypes()
	for i := 0; i < cfg.Traders; i++ {
		archetype := archetypes[i%len(archetypes)]
		id := fmt.Sprintf("npc-%04d", i+1)
		mem.PutTrader(
			npc.Trader{
				ID:            id,
				Name:          fmt.Sprintf("%s #%d", archetype, i/len(archetypes)+1),
				Archetype:     archetype,
				RiskTolerance: 20 + rng.Float64()*70,
				SkillLevel:    1 + rng.Intn(10),
				Capital:       cfg.StartingCapital,
				Active:        true,
			},
			npc.Strategy{
				MaxPositionPct:      5 + rng.Float64()*25,
				HoldingPeriodDays:   1 + rng.Intn(90),
				StopLossPct:         5 + rng.Float64()*15,
				TakeProfitPct:       10 + rng.Float64()*30,
				PreferredAssetTypes: preferredTypes(rng),
			},
			npc.Psychology{
				PanicThreshold:     20 + rng.Float64()*60,
				GreedThreshold:     20 + rng.Float64()*60,
				FomoSusceptibility: rng.Float64() * 100,
				NewsReaction:       pick(rng, npc.ReactionIgnore, npc.ReactionConsider, npc.ReactionEmotional),
				LossCutSpeed:       pick(rng, npc.LossCutInstant, npc.LossCutSlow, npc.LossCutNever),
			},
		)
	}

	labels := []string{"positive", "negative", "neutral"}
	for i := 0; i < cfg.Assets/4+1; i++ {
		target := assets[rng.Intn(len(assets))]
		mem.PutEvent(news.Event{
			ID:             fmt.Sprintf("event-%03d", i+1),
			Category:       "general",
			Impact:         labels[rng.Intn(len(labels))],
			Significance:   1 + rng.Float64()*9,
			AffectedAssets: []string{target.ID},
			Active:         true,
			OccurredAt:     now.Add(-time.Duration(rng.Intn(20)) * time.Hour),
		})
	}
}

// preferredTypes picks 2-4 asset classes; roughly a third of traders take
// no preference at all.
func preferredTypes(rng *rand.Rand) []string {
	if rng.Intn(3) == 0 {
		return nil
	}
	n := 2 + rng.Intn(3)
	seen := map[string]bool{}
	var out []string
	for len(out) < n {
		t := assetTypes[rng.Intn(len(assetTypes))]
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func pick[T any](rng *rand.Rand, opts ...T) T {
	return opts[rng.Intn(len(opts))]
}
