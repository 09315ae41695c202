package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSentimentFor(t *testing.T) {
	assert.Equal(t, 75.0, SentimentFor("positive"))
	assert.Equal(t, -75.0, SentimentFor("negative"))
	assert.Equal(t, 0.0, SentimentFor("neutral"))
	assert.Equal(t, 0.0, SentimentFor("weird-label"))
	assert.Equal(t, 0.0, SentimentFor(""))
}

func TestExpand_OneImpactPerAffectedAsset(t *testing.T) {
	now := time.Now()
	events := []Event{{
		ID:             "e1",
		Impact:         "positive",
		Significance:   7,
		AffectedAssets: []string{"a1", "a2", "a3"},
		Active:         true,
		OccurredAt:     now.Add(-time.Hour),
	}}

	impacts := Expand(events, now, 24*time.Hour)
	assert.Len(t, impacts, 3)
	for i, assetID := range []string{"a1", "a2", "a3"} {
		assert.Equal(t, assetID, impacts[i].AssetID)
		assert.Equal(t, 75.0, impacts[i].Sentiment)
		assert.Equal(t, 7.0, impacts[i].Significance)
		assert.Equal(t, "general", impacts[i].Category)
	}
}

func TestExpand_DropsStaleAndInactiveEvents(t *testing.T) {
	now := time.Now()
	events := []Event{
		{ID: "stale", Impact: "negative", AffectedAssets: []string{"a1"}, Active: true, OccurredAt: now.Add(-25 * time.Hour)},
		{ID: "inactive", Impact: "negative", AffectedAssets: []string{"a1"}, Active: false, OccurredAt: now.Add(-time.Hour)},
		{ID: "fresh", Impact: "negative", AffectedAssets: []string{"a1"}, Active: true, OccurredAt: now.Add(-23 * time.Hour)},
	}

	impacts := Expand(events, now, 24*time.Hour)
	assert.Len(t, impacts, 1)
	assert.Equal(t, -75.0, impacts[0].Sentiment)
}

func TestAverageSentiment(t *testing.T) {
	impacts := []Impact{
		{AssetID: "a1", Sentiment: 75},
		{AssetID: "a1", Sentiment: -75},
		{AssetID: "a1", Sentiment: 0},
		{AssetID: "a2", Sentiment: -75},
	}
	assert.Equal(t, 0.0, AverageSentiment(impacts, "a1"))
	assert.Equal(t, -75.0, AverageSentiment(impacts, "a2"))
	assert.Equal(t, 0.0, AverageSentiment(impacts, "missing"))
}

func TestMaxSignificance(t *testing.T) {
	impacts := []Impact{
		{AssetID: "a1", Significance: 3},
		{AssetID: "a1", Significance: 9},
		{AssetID: "a1", Significance: 5},
	}
	assert.Equal(t, 9.0, MaxSignificance(impacts, "a1"))
	assert.Equal(t, 0.0, MaxSignificance(impacts, "missing"))
}
