package marketdata

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// SyntheticProvider generates deterministic price series for the demo and
// for tests. The same seed always produces the same bars.
type SyntheticProvider struct {
	Seed       int64
	StartPrice float64
	Drift      float64
	Volatility float64

	anchor time.Time
}

var _ Provider = (*SyntheticProvider)(nil)

// NewSyntheticProvider returns the standard seeded random walk used by the
// demo: mild positive drift with realistic daily volatility.
func NewSyntheticProvider() *SyntheticProvider {
	return &SyntheticProvider{
		Seed:       42,
		StartPrice: 100,
		Drift:      0.0008,
		Volatility: 0.012,
		anchor:     syntheticAnchor,
	}
}

// NewTrendingProvider returns a noise-free monotonic series with the given
// per-bar drift.
func NewTrendingProvider(drift float64) *SyntheticProvider {
	return &SyntheticProvider{
		Seed:       42,
		StartPrice: 100,
		Drift:      drift,
		Volatility: 0,
		anchor:     syntheticAnchor,
	}
}

// NewFlatProvider returns a constant price series.
func NewFlatProvider() *SyntheticProvider {
	return &SyntheticProvider{
		Seed:       42,
		StartPrice: 100,
		Drift:      0,
		Volatility: 0,
		anchor:     syntheticAnchor,
	}
}

var syntheticAnchor = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// GetBars generates limit bars of the given interval, oldest first.
func (p *SyntheticProvider) GetBars(_ context.Context, symbol string, interval types.Interval, limit int) ([]types.PriceBar, error) {
	if !interval.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", interval)
	}

	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "bar limit must be positive, got %d", limit)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	step := intervalDuration(interval)

	anchor := p.anchor
	if anchor.IsZero() {
		anchor = syntheticAnchor
	}

	bars := make([]types.PriceBar, 0, limit)
	price := p.StartPrice

	for i := 0; i < limit; i++ {
		ret := p.Drift + p.Volatility*rng.NormFloat64()
		next := price * (1 + ret)

		high := math.Max(price, next) * (1 + 0.003*rng.Float64()*p.jitter())
		low := math.Min(price, next) * (1 - 0.003*rng.Float64()*p.jitter())

		bars = append(bars, types.PriceBar{
			Symbol: symbol,
			Time:   anchor.Add(time.Duration(i) * step),
			Open:   price,
			High:   high,
			Low:    low,
			Close:  next,
			Volume: 1000 + 500*rng.Float64(),
		})

		price = next
	}

	return bars, nil
}

func (p *SyntheticProvider) jitter() float64 {
	if p.Volatility == 0 {
		return 0
	}

	return 1
}

func intervalDuration(interval types.Interval) time.Duration {
	switch interval {
	case types.Interval1m:
		return time.Minute
	case types.Interval5m:
		return 5 * time.Minute
	case types.Interval15m:
		return 15 * time.Minute
	case types.Interval1h:
		return time.Hour
	case types.Interval4h:
		return 4 * time.Hour
	case types.Interval1d:
		return 24 * time.Hour
	}

	return 24 * time.Hour
}

// SyntheticQuotes is a quote source that walks the last price randomly on
// every call. It backs the monitor demo when no exchange is reachable.
type SyntheticQuotes struct {
	mu    sync.Mutex
	rng   *rand.Rand
	price float64
	vol   float64
}

var _ QuoteProvider = (*SyntheticQuotes)(nil)

// NewSyntheticQuotes creates a quote walker starting at the given price.
func NewSyntheticQuotes(start float64) *SyntheticQuotes {
	return &SyntheticQuotes{
		rng:   rand.New(rand.NewSource(42)),
		price: start,
		vol:   0.002,
	}
}

// GetQuote advances the walk one step and returns the new snapshot.
func (q *SyntheticQuotes) GetQuote(_ context.Context, symbol string) (types.Quote, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.price *= 1 + q.vol*q.rng.NormFloat64()
	spread := q.price * 0.0002

	return types.Quote{
		Symbol: symbol,
		Bid:    q.price - spread/2,
		Ask:    q.price + spread/2,
		Last:   q.price,
		Time:   time.Now().UTC(),
	}, nil
}
