package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

func TestSyntheticDeterministic(t *testing.T) {
	ctx := context.Background()

	first, err := NewSyntheticProvider().GetBars(ctx, "BTCUSDT", types.Interval1d, 500)
	require.NoError(t, err)

	second, err := NewSyntheticProvider().GetBars(ctx, "BTCUSDT", types.Interval1d, 500)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed must produce the same series")
	assert.Len(t, first, 500)
}

func TestSyntheticBarShape(t *testing.T) {
	bars, err := NewSyntheticProvider().GetBars(context.Background(), "BTCUSDT", types.Interval1d, 200)
	require.NoError(t, err)

	for i, bar := range bars {
		assert.GreaterOrEqual(t, bar.High, bar.Open, "bar %d", i)
		assert.GreaterOrEqual(t, bar.High, bar.Close, "bar %d", i)
		assert.LessOrEqual(t, bar.Low, bar.Open, "bar %d", i)
		assert.LessOrEqual(t, bar.Low, bar.Close, "bar %d", i)
		assert.Positive(t, bar.Close, "bar %d", i)

		if i > 0 {
			assert.True(t, bar.Time.After(bars[i-1].Time), "bars must be strictly ordered")
		}
	}
}

func TestTrendingProviderIsMonotonic(t *testing.T) {
	bars, err := NewTrendingProvider(0.005).GetBars(context.Background(), "BTCUSDT", types.Interval1d, 100)
	require.NoError(t, err)

	for i := 1; i < len(bars); i++ {
		assert.Greater(t, bars[i].Close, bars[i-1].Close)
	}
}

func TestFlatProviderIsConstant(t *testing.T) {
	bars, err := NewFlatProvider().GetBars(context.Background(), "BTCUSDT", types.Interval1d, 100)
	require.NoError(t, err)

	for _, bar := range bars {
		assert.Equal(t, 100.0, bar.Close)
	}
}

func TestSyntheticRejectsBadArguments(t *testing.T) {
	provider := NewSyntheticProvider()

	_, err := provider.GetBars(context.Background(), "BTCUSDT", types.Interval("9z"), 10)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInterval, errors.GetCode(err))

	_, err = provider.GetBars(context.Background(), "BTCUSDT", types.Interval1d, 0)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func TestSyntheticQuotesWalk(t *testing.T) {
	quotes := NewSyntheticQuotes(100)

	q1, err := quotes.GetQuote(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", q1.Symbol)
	assert.Less(t, q1.Bid, q1.Ask)
	assert.Positive(t, q1.Last)

	q2, err := quotes.GetQuote(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.NotEqual(t, q1.Last, q2.Last, "walk should move the price")
}
