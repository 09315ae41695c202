package market

import (
	"math"
	"time"
)

// Candle is one OHLCV bar of an asset's trailing history. Only Close and
// Volume feed the analyzer; the remaining fields ride along for storage.
type Candle struct {
	AssetID     string
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	PeriodStart time.Time
}

// Intelligence is the per-asset snapshot computed once per cycle and shared
// read-only by every trader in that cycle.
type Intelligence struct {
	AssetID        string
	CurrentPrice   float64
	PriceChange24h float64
	PriceChangePct float64
	Volume24h      float64
	AverageVolume  float64
	VolumeRatio    float64
	Volatility     float64 // stddev/mean of closes, percent
	Momentum       float64 // oldest→newest close change, percent
	HeatScore      float64 // 0..100
	Support        float64
	Resistance     float64
	HasLevels      bool
}

// Analyze computes an intelligence snapshot from an asset's trailing candle
// history and current quoted price. Pure function: same inputs, same
// snapshot. An empty history yields a zeroed snapshot rather than an error.
func Analyze(assetID string, currentPrice float64, candles []Candle) Intelligence {
	if len(candles) == 0 {
		return Intelligence{
			AssetID:      assetID,
			CurrentPrice: currentPrice,
			VolumeRatio:  1,
		}
	}

	// Candle order is not trusted; locate window edges by timestamp.
	oldest, newest := candles[0], candles[0]
	for _, c := range candles[1:] {
		if c.PeriodStart.Before(oldest.PeriodStart) {
			oldest = c
		}
		if c.PeriodStart.After(newest.PeriodStart) {
			newest = c
		}
	}

	closes := make([]float64, 0, len(candles))
	totalVolume := 0.0
	for _, c := range candles {
		closes = append(closes, c.Close)
		totalVolume += c.Volume
	}

	priceChange := currentPrice - oldest.Close
	changePct := 0.0
	if oldest.Close != 0 {
		changePct = priceChange / oldest.Close * 100
	}

	// A zero average volume divides as 1 so the ratio stays finite.
	avgVolume := totalVolume / float64(len(candles))
	div := avgVolume
	if div == 0 {
		div = 1
	}
	volumeRatio := newest.Volume / div

	volatility := volatilityPct(closes)
	momentum := momentumPct(oldest.Close, newest.Close, len(closes))

	support, resistance := closes[0], closes[0]
	for _, p := range closes[1:] {
		support = math.Min(support, p)
		resistance = math.Max(resistance, p)
	}

	return Intelligence{
		AssetID:        assetID,
		CurrentPrice:   currentPrice,
		PriceChange24h: priceChange,
		PriceChangePct: changePct,
		Volume24h:      totalVolume,
		AverageVolume:  avgVolume,
		VolumeRatio:    volumeRatio,
		Volatility:     volatility,
		Momentum:       momentum,
		HeatScore:      HeatScore(volatility, volumeRatio, momentum),
		Support:        support,
		Resistance:     resistance,
		HasLevels:      true,
	}
}

// volatilityPct is the population standard deviation of closes relative to
// their mean, as a percentage. Fewer than two points carry no signal.
func volatilityPct(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	mean := 0.0
	for _, p := range closes {
		mean += p
	}
	mean /= float64(len(closes))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, p := range closes {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(closes))
	return math.Sqrt(variance) / mean * 100
}

func momentumPct(oldestClose, newestClose float64, n int) float64 {
	if n < 2 || oldestClose == 0 {
		return 0
	}
	return (newestClose - oldestClose) / oldestClose * 100
}

// HeatScore folds volatility, volume pressure, and momentum into a 0..100
// activity measure: up to 40 points for volatility, 30 for above-average
// volume, 30 for momentum magnitude.
func HeatScore(volatility, volumeRatio, momentum float64) float64 {
	score := clamp(volatility*2, 0, 40) +
		clamp((volumeRatio-1)*20, 0, 30) +
		clamp(math.Abs(momentum), 0, 30)
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
