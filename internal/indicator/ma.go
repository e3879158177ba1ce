package indicator

import (
	"github.com/januswing/strategy-miner/pkg/errors"
)

// SMA computes the simple moving average of the series over a trailing
// window. The first period-1 values are undefined.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be positive, got %d", period)
	}

	out := nanSeries(len(values))

	var sum float64

	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out, nil
}
