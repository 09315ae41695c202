package news

import "time"

// Event is one raw market event as stored, possibly touching several assets.
type Event struct {
	ID             string
	Category       string
	Impact         string // "positive" | "negative" | "neutral"
	Significance   float64
	AffectedAssets []string
	Active         bool
	OccurredAt     time.Time
}

// Impact is one event's effect on one asset, with the qualitative label
// already mapped to a sentiment score.
type Impact struct {
	AssetID      string
	Sentiment    float64 // -100..100
	Significance float64 // 0..10
	Category     string
	Timestamp    time.Time
}

const (
	sentimentPositive = 75
	sentimentNegative = -75
)

// SentimentFor maps a qualitative impact label to its sentiment score.
// Anything outside the known labels reads as neutral.
func SentimentFor(impact string) float64 {
	switch impact {
	case "positive":
		return sentimentPositive
	case "negative":
		return sentimentNegative
	default:
		return 0
	}
}

// Expand turns active events inside the trailing window into one impact per
// affected asset. Averaging across impacts for the same asset is left to the
// consumer.
func Expand(events []Event, now time.Time, window time.Duration) []Impact {
	cutoff := now.Add(-window)
	var impacts []Impact
	for _, ev := range events {
		if !ev.Active || ev.OccurredAt.Before(cutoff) {
			continue
		}
		category := ev.Category
		if category == "" {
			category = "general"
		}
		sentiment := SentimentFor(ev.Impact)
		for _, assetID := range ev.AffectedAssets {
			impacts = append(impacts, Impact{
				AssetID:      assetID,
				Sentiment:    sentiment,
				Significance: ev.Significance,
				Category:     category,
				Timestamp:    ev.OccurredAt,
			})
		}
	}
	return impacts
}

// AverageSentiment is the mean sentiment across an asset's impacts, 0 when
// there are none.
func AverageSentiment(impacts []Impact, assetID string) float64 {
	sum, n := 0.0, 0
	for _, im := range impacts {
		if im.AssetID == assetID {
			sum += im.Sentiment
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MaxSignificance is the highest significance among an asset's impacts, 0
// when there are none.
func MaxSignificance(impacts []Impact, assetID string) float64 {
	max := 0.0
	for _, im := range impacts {
		if im.AssetID == assetID && im.Significance > max {
			max = im.Significance
		}
	}
	return max
}
