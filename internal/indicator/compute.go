package indicator

import (
	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// Compute builds the indicator frame a strategy spec needs for simulation.
// Only the columns relevant to the spec's kind are computed. Series shorter
// than the warm-up window come back with every value undefined; the
// simulator then produces zero trades rather than a fault.
func Compute(bars []types.PriceBar, spec types.StrategySpec) (*Frame, error) {
	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "no bars to compute indicators over")
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	frame := NewFrame(bars)

	switch spec.Kind {
	case types.KindMACrossover, types.KindTrendFollowing, types.KindUnknown:
		if spec.FastWindow >= spec.SlowWindow {
			return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
				"fast window %d must be shorter than slow window %d", spec.FastWindow, spec.SlowWindow)
		}

		fast, err := SMA(closes, spec.FastWindow)
		if err != nil {
			return nil, err
		}

		slow, err := SMA(closes, spec.SlowWindow)
		if err != nil {
			return nil, err
		}

		if err := frame.SetColumn(ColumnFastMA, fast); err != nil {
			return nil, err
		}

		if err := frame.SetColumn(ColumnSlowMA, slow); err != nil {
			return nil, err
		}

	case types.KindRSIOversold, types.KindRSIOverbought:
		rsi, err := RSI(closes, spec.RSIPeriod)
		if err != nil {
			return nil, err
		}

		if err := frame.SetColumn(ColumnRSI, rsi); err != nil {
			return nil, err
		}

	case types.KindBollingerBands:
		bands, err := Bollinger(closes, spec.BollingerWindow, spec.BollingerStdDev)
		if err != nil {
			return nil, err
		}

		if err := frame.SetColumn(ColumnBollUpper, bands.Upper); err != nil {
			return nil, err
		}

		if err := frame.SetColumn(ColumnBollMiddle, bands.Middle); err != nil {
			return nil, err
		}

		if err := frame.SetColumn(ColumnBollLower, bands.Lower); err != nil {
			return nil, err
		}

	default:
		return nil, errors.Newf(errors.ErrCodeInvalidType, "unhandled strategy kind %q", spec.Kind)
	}

	return frame, nil
}
