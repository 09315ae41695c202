package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rajchodisetti/npc-market/internal/npc"
)

func TestSimPriceSource_StableBasePrice(t *testing.T) {
	ctx := context.Background()
	a := NewSimPriceSource(1, 1000)
	b := NewSimPriceSource(99, 1000)

	pa, err := a.CurrentPrice(ctx, "asset-001")
	require.NoError(t, err)
	pb, err := b.CurrentPrice(ctx, "asset-001")
	require.NoError(t, err)

	// base price depends only on the asset ID, never on the seed
	assert.Equal(t, pa, pb)
	assert.GreaterOrEqual(t, pa, 10.0)
	assert.LessOrEqual(t, pa, 510.0)
}

func TestSimPriceSource_SetPriceAndStep(t *testing.T) {
	ctx := context.Background()
	s := NewSimPriceSource(1, 1000)
	s.SetPrice("a1", 100)

	p, err := s.CurrentPrice(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)

	s.Step(0.10, 0)
	p, err = s.CurrentPrice(ctx, "a1")
	require.NoError(t, err)
	assert.InDelta(t, 110.0, p, 1e-9)
}

func TestSimPriceSource_SameSeedSameWalk(t *testing.T) {
	ctx := context.Background()
	a := NewSimPriceSource(7, 1000)
	b := NewSimPriceSource(7, 1000)
	a.SetPrice("a1", 100)
	b.SetPrice("a1", 100)

	for i := 0; i < 5; i++ {
		a.Step(0, 0.02)
		b.Step(0, 0.02)
	}
	pa, err := a.CurrentPrice(ctx, "a1")
	require.NoError(t, err)
	pb, err := b.CurrentPrice(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestSimPriceSource_WaitHonorsCancel(t *testing.T) {
	s := NewSimPriceSource(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// burst of 1 is consumed by the first call; the second must wait and
	// therefore observes the cancelled context
	_, _ = s.CurrentPrice(context.Background(), "a1")
	_, err := s.CurrentPrice(ctx, "a1")
	assert.Error(t, err)
}

func TestSimEvaluator_Deterministic(t *testing.T) {
	e := NewSimEvaluator()
	p := npc.Personality{
		RiskTolerance: 60, SkillLevel: 5, MaxPositionPct: 20,
		PanicThreshold: 40, GreedThreshold: 50, FomoSusceptibility: 30,
		NewsReaction: npc.ReactionConsider, LossCutSpeed: npc.LossCutSlow,
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, e.ShouldTrade(p, -75, 8, 6), e.ShouldTrade(p, -75, 8, 6))
		assert.Equal(t, e.Direction(p, -75, 8, 6), e.Direction(p, -75, 8, 6))
		assert.Equal(t, e.SizeFraction(p, 1000, 12), e.SizeFraction(p, 1000, 12))
	}
}

func TestSimEvaluator_ShouldTradeThreshold(t *testing.T) {
	e := NewSimEvaluator()
	timid := npc.Personality{RiskTolerance: 0, SkillLevel: 0, NewsReaction: npc.ReactionIgnore}
	bold := npc.Personality{RiskTolerance: 100, SkillLevel: 10, NewsReaction: npc.ReactionEmotional, FomoSusceptibility: 80}

	// dead market: nobody trades
	assert.False(t, e.ShouldTrade(timid, 0, 0, 0))
	// strong move plus big news clears even the timid threshold
	assert.True(t, e.ShouldTrade(timid, 75, 10, 8))
	// the bold trader acts on much weaker signals
	assert.True(t, e.ShouldTrade(bold, 20, 1, 1))
}

func TestSimEvaluator_DirectionPanicAndGreed(t *testing.T) {
	e := NewSimEvaluator()

	panicky := npc.Personality{PanicThreshold: 30, LossCutSpeed: npc.LossCutInstant, NewsReaction: npc.ReactionIgnore}
	assert.Equal(t, npc.SideSell, e.Direction(panicky, 0, -5, 0))

	holder := npc.Personality{PanicThreshold: 30, LossCutSpeed: npc.LossCutNever, NewsReaction: npc.ReactionConsider}
	// drawdown past the panic threshold, but this trader never cuts; the
	// negative blend still sells
	assert.Equal(t, npc.SideSell, e.Direction(holder, 0, -5, 0))
	// with strongly positive sentiment the blend flips back to buy
	assert.Equal(t, npc.SideBuy, e.Direction(holder, 75, -5, 0))

	greedy := npc.Personality{GreedThreshold: 40, LossCutSpeed: npc.LossCutInstant, NewsReaction: npc.ReactionIgnore}
	assert.Equal(t, npc.SideSell, e.Direction(greedy, 0, 6, 0))

	patient := npc.Personality{GreedThreshold: 40, LossCutSpeed: npc.LossCutSlow, NewsReaction: npc.ReactionIgnore}
	assert.Equal(t, npc.SideBuy, e.Direction(patient, 0, 6, 0))
}

func TestSimEvaluator_SizeFractionBounds(t *testing.T) {
	e := NewSimEvaluator()

	cases := []npc.Personality{
		{MaxPositionPct: 0, RiskTolerance: 0},
		{MaxPositionPct: 100, RiskTolerance: 100},
		{MaxPositionPct: 5, RiskTolerance: 50},
	}
	for _, p := range cases {
		for _, vol := range []float64{0, 10, 1e6} {
			f := e.SizeFraction(p, 10000, vol)
			assert.GreaterOrEqual(t, f, 0.01)
			assert.LessOrEqual(t, f, 1.0)
		}
	}

	// volatility shrinks the commitment
	p := npc.Personality{MaxPositionPct: 20, RiskTolerance: 50}
	assert.Greater(t, e.SizeFraction(p, 10000, 0), e.SizeFraction(p, 10000, 40))
}
