// Package adapters holds simulation-grade implementations of the external
// collaborators the trading cycle consumes: a pricing source and a
// personality evaluator. Production deployments swap in their own.
package adapters

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"

	"golang.org/x/time/rate"
)

// SimPriceSource quotes prices from a per-asset random walk. Lookups go
// through a rate limiter so a misconfigured caller cannot hammer the source;
// the same budget discipline applies when this is swapped for a live
// provider.
type SimPriceSource struct {
	mu      sync.Mutex
	rng     *rand.Rand
	prices  map[string]float64
	limiter *rate.Limiter
}

// NewSimPriceSource seeds the walk. rps bounds CurrentPrice calls per second.
func NewSimPriceSource(seed int64, rps float64) *SimPriceSource {
	return &SimPriceSource{
		rng:     rand.New(rand.NewSource(seed)),
		prices:  map[string]float64{},
		limiter: rate.NewLimiter(rate.Limit(rps), int(math.Max(1, rps))),
	}
}

// CurrentPrice returns the asset's simulated quote. Unknown assets start at
// a base price derived from the asset ID so runs with the same seed are
// reproducible regardless of lookup order within a cycle.
func (s *SimPriceSource) CurrentPrice(ctx context.Context, assetID string) (float64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prices[assetID]
	if !ok {
		p = basePrice(assetID)
		s.prices[assetID] = p
	}
	return p, nil
}

// Step advances every known asset's walk by one tick. drift and vol are
// fractions per tick (e.g. 0.0, 0.02).
func (s *SimPriceSource) Step(drift, vol float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.prices {
		next := p * (1 + drift + vol*s.rng.NormFloat64())
		if next < 0.01 {
			next = 0.01
		}
		s.prices[id] = next
	}
}

// SetPrice pins an asset's quote, for tests and seeding.
func (s *SimPriceSource) SetPrice(assetID string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[assetID] = price
}

// basePrice maps an asset ID into a stable 10..510 range.
func basePrice(assetID string) float64 {
	h := fnv.New32a()
	h.Write([]byte(assetID))
	return 10 + float64(h.Sum32()%50000)/100
}
