package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/januswing/strategy-miner/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected types.Tier
	}{
		{
			name:     "orderbook strategy is high frequency",
			text:     "capture the bid-ask spread from orderbook imbalance",
			expected: types.TierHighFrequency,
		},
		{
			name:     "market making is high frequency",
			text:     "simple market making with inventory limits",
			expected: types.TierHighFrequency,
		},
		{
			name:     "ma crossover is trend",
			text:     "buy when the 10 day MA crosses above the 20 day MA",
			expected: types.TierTrend,
		},
		{
			name:     "rsi is trend",
			text:     "buy when RSI below 30",
			expected: types.TierTrend,
		},
		{
			name:     "dividend screen is fundamental",
			text:     "hold high dividend stocks with low P/E and solid ROE",
			expected: types.TierFundamental,
		},
		{
			name:     "hf outranks trend",
			text:     "momentum strategy on orderbook ticks",
			expected: types.TierHighFrequency,
		},
		{
			name:     "trend outranks fundamental",
			text:     "momentum rotation into high dividend names",
			expected: types.TierTrend,
		},
		{
			name:     "no keywords defaults to trend",
			text:     "buy low sell high",
			expected: types.TierTrend,
		},
		{
			name:     "ma does not fire inside market",
			text:     "market timing by valuation ratio",
			expected: types.TierFundamental,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.text))
		})
	}
}

func TestMethodFor(t *testing.T) {
	assert.Equal(t, types.MethodMonitor, MethodFor(types.TierHighFrequency))
	assert.Equal(t, types.MethodBacktest, MethodFor(types.TierTrend))
	assert.Equal(t, types.MethodUnsupported, MethodFor(types.TierFundamental))
}
