package adapters

import (
	"math"

	"github.com/Rajchodisetti/npc-market/internal/npc"
)

// SimEvaluator is a deterministic personality evaluator: the same
// personality and market signals always produce the same call. Determinism
// keeps full-cycle runs reproducible under a fixed seed and makes the
// orchestrator testable without a mock.
type SimEvaluator struct{}

func NewSimEvaluator() *SimEvaluator { return &SimEvaluator{} }

// newsWeight scales how much sentiment reaches the decision.
func newsWeight(r npc.NewsReaction) float64 {
	switch r {
	case npc.ReactionIgnore:
		return 0
	case npc.ReactionEmotional:
		return 1
	default:
		return 0.5
	}
}

// urge folds the market signals into a single 0..100-ish pressure score.
func urge(p npc.Personality, sentiment, priceChangePct, significance float64) float64 {
	u := math.Abs(priceChangePct) * 4
	u += math.Abs(sentiment) * newsWeight(p.NewsReaction) * 0.4
	u += significance * 4
	u += p.FomoSusceptibility * 0.15
	return u
}

// ShouldTrade compares trading pressure to a threshold that falls as risk
// tolerance rises. Calm markets with no news keep most traders idle.
func (e *SimEvaluator) ShouldTrade(p npc.Personality, sentiment, priceChangePct, significance float64) bool {
	threshold := 55 - p.RiskTolerance*0.35 - float64(p.SkillLevel)
	return urge(p, sentiment, priceChangePct, significance) >= threshold
}

// Direction blends price action and weighted sentiment; a negative blend
// sells, anything else buys. Panic thresholds and instant loss-cutting bias
// the call toward selling on drawdowns.
func (e *SimEvaluator) Direction(p npc.Personality, sentiment, priceChangePct, significance float64) npc.Side {
	blend := priceChangePct*5 + sentiment*newsWeight(p.NewsReaction)

	if priceChangePct < 0 && math.Abs(priceChangePct) >= p.PanicThreshold/10 && p.LossCutSpeed != npc.LossCutNever {
		return npc.SideSell
	}
	if priceChangePct > 0 && priceChangePct >= p.GreedThreshold/10 && p.LossCutSpeed == npc.LossCutInstant {
		// quick profit takers exit into strength
		return npc.SideSell
	}
	if blend < 0 {
		return npc.SideSell
	}
	return npc.SideBuy
}

// SizeFraction returns the fraction of capital to commit, inside (0, 1].
// The strategy's position ceiling anchors it; volatility shrinks it, risk
// tolerance restores some of the cut.
func (e *SimEvaluator) SizeFraction(p npc.Personality, capital, volatility float64) float64 {
	base := p.MaxPositionPct / 100
	if base <= 0 {
		base = 0.1
	}
	f := base * (0.5 + p.RiskTolerance/200) / (1 + volatility/50)
	if f < 0.01 {
		f = 0.01
	}
	if f > 1 {
		f = 1
	}
	return f
}
