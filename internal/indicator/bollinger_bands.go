package indicator

import (
	"math"

	"github.com/januswing/strategy-miner/pkg/errors"
)

// BollingerBands holds the three aligned band series.
type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes Bollinger Bands: middle is the trailing SMA, upper and
// lower sit stdDev population standard deviations away from it.
func Bollinger(values []float64, period int, stdDev float64) (BollingerBands, error) {
	if period <= 0 {
		return BollingerBands{}, errors.Newf(errors.ErrCodeInvalidPeriod,
			"bollinger period must be positive, got %d", period)
	}

	if stdDev <= 0 {
		return BollingerBands{}, errors.Newf(errors.ErrCodeInvalidStdDev,
			"bollinger std dev must be positive, got %f", stdDev)
	}

	middle, err := SMA(values, period)
	if err != nil {
		return BollingerBands{}, err
	}

	upper := nanSeries(len(values))
	lower := nanSeries(len(values))

	for i := period - 1; i < len(values); i++ {
		mean := middle[i]

		var variance float64

		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}

		sigma := math.Sqrt(variance / float64(period))
		upper[i] = mean + stdDev*sigma
		lower[i] = mean - stdDev*sigma
	}

	return BollingerBands{Upper: upper, Middle: middle, Lower: lower}, nil
}
