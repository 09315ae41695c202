package npc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArchetype(t *testing.T) {
	for _, a := range Archetypes() {
		assert.Equal(t, a, ParseArchetype(string(a)))
	}
	assert.Equal(t, ArchetypeUnknown, ParseArchetype("hodler"))
	assert.Equal(t, ArchetypeUnknown, ParseArchetype(""))
}

func TestBuildPersonality(t *testing.T) {
	p := BuildPersonality(
		Trader{Archetype: Whale, RiskTolerance: 80, SkillLevel: 9},
		Strategy{MaxPositionPct: 25},
		Psychology{PanicThreshold: 30, GreedThreshold: 60, FomoSusceptibility: 10,
			NewsReaction: ReactionIgnore, LossCutSpeed: LossCutNever},
	)
	assert.Equal(t, Whale, p.Archetype)
	assert.Equal(t, 80.0, p.RiskTolerance)
	assert.Equal(t, 9, p.SkillLevel)
	assert.Equal(t, 25.0, p.MaxPositionPct)
	assert.Equal(t, ReactionIgnore, p.NewsReaction)
	assert.Equal(t, LossCutNever, p.LossCutSpeed)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindMissingContext, KindOf(NewMissingContextError("t1", "no strategy")))
	assert.Equal(t, KindInsufficientCapital, KindOf(NewInsufficientCapitalError("t1", "a1", 100, 50)))
	assert.Equal(t, KindInsufficientPosition, KindOf(NewInsufficientPositionError("t1", "a1", 5, 2)))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("cycle: %w", NewInsufficientCapitalError("t1", "a1", 100, 50))
	assert.Equal(t, KindInsufficientCapital, KindOf(wrapped))
}

func TestTradeErrorMessage(t *testing.T) {
	err := NewInsufficientCapitalError("t1", "a1", 100.5, 20.25)
	assert.Contains(t, err.Error(), "insufficient_capital")
	assert.Contains(t, err.Error(), "t1")
	assert.Contains(t, err.Error(), "100.50")

	withCause := NewUnexpectedError("t1", "persist", errors.New("db down"))
	assert.Contains(t, withCause.Error(), "db down")
	assert.Equal(t, "db down", errors.Unwrap(withCause).Error())
}
