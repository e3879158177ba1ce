package indicator

import (
	"github.com/januswing/strategy-miner/pkg/errors"
)

// RSI computes the relative strength index over simple trailing averages of
// gains and losses. Values are undefined until period deltas are available.
// A window with gains and no losses saturates at 100 rather than dividing by
// zero; a fully flat window stays undefined.
func RSI(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "rsi period must be positive, got %d", period)
	}

	out := nanSeries(len(values))

	for i := period; i < len(values); i++ {
		var gains, losses float64

		for j := i - period + 1; j <= i; j++ {
			delta := values[j] - values[j-1]
			if delta > 0 {
				gains += delta
			} else {
				losses -= delta
			}
		}

		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		if avgLoss == 0 {
			// No losses and no gains means a flat window: there is no
			// strength to measure, so the value stays undefined.
			if avgGain > 0 {
				out[i] = 100
			}

			continue
		}

		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}

	return out, nil
}
