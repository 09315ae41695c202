package decision

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/Rajchodisetti/npc-market/internal/market"
	"github.com/Rajchodisetti/npc-market/internal/news"
	"github.com/Rajchodisetti/npc-market/internal/npc"
)

// Evaluator is the personality-evaluation contract. It turns behavioral
// parameters plus market signals into the binary trade call, its direction,
// and the position-size fraction.
type Evaluator interface {
	ShouldTrade(p npc.Personality, sentiment, priceChangePct, significance float64) bool
	Direction(p npc.Personality, sentiment, priceChangePct, significance float64) npc.Side
	SizeFraction(p npc.Personality, capital, volatility float64) float64
}

// TraderContext is everything one trader brings into a decision, loaded once
// at the start of a cycle and read-only afterwards.
type TraderContext struct {
	Trader      npc.Trader
	Strategy    npc.Strategy
	Psychology  npc.Psychology
	Personality npc.Personality
	Positions   []npc.Position
	AssetTypes  map[string]string // assetID -> asset type, for preference filters
}

// Decision is the engine's output: either a fully specified trade intent or
// an analysis-only outcome.
type Decision struct {
	Traded    bool
	AssetID   string
	Side      npc.Side
	Quantity  int
	Price     float64
	Reasoning string
}

const (
	reasonNoTrade = "Analyzed market conditions but decided not to trade at this time"

	// value investors only buy dips with clearly negative coverage
	dipSentimentCeiling = -20
	// swing traders want price within this fraction of the support/resistance range
	levelProximity = 0.10
)

// Decide runs one trader's full decision: preference filter, archetype
// selection, news aggregation for the chosen asset, the evaluator call, and
// quantity sizing. rng drives the random choices some archetypes make; pass
// a seeded source for reproducible runs.
func Decide(tc TraderContext, intel []market.Intelligence, impacts []news.Impact, eval Evaluator, rng *rand.Rand) Decision {
	candidates := filterPreferred(intel, tc)
	if len(candidates) == 0 {
		return Decision{Reasoning: reasonNoTrade}
	}

	target, ok := selectTarget(tc.Personality.Archetype, candidates, impacts, tc.Positions, rng)
	if !ok {
		return Decision{Reasoning: reasonNoTrade}
	}

	sentiment := news.AverageSentiment(impacts, target.AssetID)
	significance := news.MaxSignificance(impacts, target.AssetID)

	if !eval.ShouldTrade(tc.Personality, sentiment, target.PriceChangePct, significance) {
		return Decision{AssetID: target.AssetID, Reasoning: reasonNoTrade}
	}

	side := eval.Direction(tc.Personality, sentiment, target.PriceChangePct, significance)
	fraction := eval.SizeFraction(tc.Personality, tc.Trader.Capital, target.Volatility)
	quantity := int(math.Floor(fraction * tc.Trader.Capital / target.CurrentPrice))
	if quantity <= 0 {
		return Decision{AssetID: target.AssetID, Reasoning: reasonNoTrade}
	}

	stance := "Bearish"
	if side == npc.SideBuy {
		stance = "Bullish"
	}
	return Decision{
		Traded:   true,
		AssetID:  target.AssetID,
		Side:     side,
		Quantity: quantity,
		Price:    target.CurrentPrice,
		Reasoning: fmt.Sprintf("%s on price action (%.2f%%), sentiment: %.0f",
			stance, target.PriceChangePct, sentiment),
	}
}

// filterPreferred keeps assets whose type matches the trader's preference
// list. An empty list means no preference. Matching is case-insensitive and
// tolerant of partial labels in either direction ("option" vs "options").
func filterPreferred(intel []market.Intelligence, tc TraderContext) []market.Intelligence {
	prefs := tc.Strategy.PreferredAssetTypes
	if len(prefs) == 0 {
		return intel
	}
	var out []market.Intelligence
	for _, in := range intel {
		assetType := strings.ToLower(tc.AssetTypes[in.AssetID])
		if assetType == "" {
			continue
		}
		for _, pref := range prefs {
			p := strings.ToLower(pref)
			if strings.Contains(assetType, p) || strings.Contains(p, assetType) {
				out = append(out, in)
				break
			}
		}
	}
	return out
}

// selectTarget applies the archetype's selection rule and returns the chosen
// asset. The switch is exhaustive over the closed archetype set; an archetype
// whose filter leaves nothing returns ok=false, meaning no trade this cycle.
func selectTarget(a npc.Archetype, candidates []market.Intelligence, impacts []news.Impact, positions []npc.Position, rng *rand.Rand) (market.Intelligence, bool) {
	var ordered []market.Intelligence

	switch a {
	case npc.MomentumChaser:
		ordered = sortedBy(candidates, func(x, y market.Intelligence) bool {
			return math.Abs(x.Momentum) > math.Abs(y.Momentum)
		})
	case npc.DayTrader:
		ordered = sortedBy(candidates, func(x, y market.Intelligence) bool {
			return x.VolumeRatio+x.Volatility > y.VolumeRatio+y.Volatility
		})
	case npc.Contrarian:
		ordered = sortedBy(candidates, func(x, y market.Intelligence) bool {
			return math.Abs(x.PriceChangePct) > math.Abs(y.PriceChangePct)
		})
	case npc.ValueInvestor:
		ordered = keep(candidates, func(in market.Intelligence) bool {
			return news.AverageSentiment(impacts, in.AssetID) < dipSentimentCeiling
		})
	case npc.PanicSeller:
		held := make(map[string]bool, len(positions))
		for _, pos := range positions {
			held[pos.AssetID] = true
		}
		ordered = keep(candidates, func(in market.Intelligence) bool {
			return held[in.AssetID]
		})
	case npc.SwingTrader:
		ordered = keep(candidates, nearLevel)
	case npc.Whale:
		ordered = sortedBy(candidates, func(x, y market.Intelligence) bool {
			return x.Volatility < y.Volatility
		})
	default:
		// unknown labels read from storage trade without a bias of their own
		return candidates[rng.Intn(len(candidates))], true
	}

	if len(ordered) == 0 {
		return market.Intelligence{}, false
	}
	return ordered[0], true
}

// nearLevel reports whether price sits within 10% of the window's
// support/resistance band edges.
func nearLevel(in market.Intelligence) bool {
	if !in.HasLevels {
		return false
	}
	band := in.Resistance - in.Support
	if band <= 0 {
		return false
	}
	toSupport := math.Abs(in.CurrentPrice - in.Support)
	toResistance := math.Abs(in.CurrentPrice - in.Resistance)
	return toSupport < band*levelProximity || toResistance < band*levelProximity
}

func sortedBy(in []market.Intelligence, less func(x, y market.Intelligence) bool) []market.Intelligence {
	out := make([]market.Intelligence, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func keep(in []market.Intelligence, pred func(market.Intelligence) bool) []market.Intelligence {
	var out []market.Intelligence
	for _, x := range in {
		if pred(x) {
			out = append(out, x)
		}
	}
	return out
}
