package backtest

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/januswing/strategy-miner/internal/types"
)

const tradingDaysPerYear = 252

// ComputeMetrics turns a closed trade list into the performance summary the
// pass/fail decision is made on. A strategy that never traded gets a defined
// failing result (full drawdown, zero returns) rather than an error.
func ComputeMetrics(trades []types.Trade, bars []types.PriceBar, feeRate float64, thresholds types.PassThresholds) types.BacktestMetrics {
	metrics := types.BacktestMetrics{
		TotalTrades:     len(trades),
		BenchmarkReturn: benchmarkReturn(bars),
	}

	if len(trades) == 0 {
		metrics.MaxDrawdown = 1.0
		metrics.Passed = false

		return metrics
	}

	one := decimal.NewFromInt(1)
	feeFactor := one.Sub(decimal.NewFromFloat(feeRate))

	capital := one
	peak := one
	maxDrawdown := decimal.Zero

	returns := make([]float64, 0, len(trades))
	wins, losses := 0, 0
	grossProfit, grossLoss := 0.0, 0.0

	for _, trade := range trades {
		ret := trade.Return()
		returns = append(returns, ret)

		if ret > 0 {
			wins++
			grossProfit += ret
		} else if ret < 0 {
			losses++
			grossLoss += -ret
		}

		// Fees are charged on the round trip when the position closes.
		capital = capital.Mul(one.Add(decimal.NewFromFloat(ret))).Mul(feeFactor)

		if capital.GreaterThan(peak) {
			peak = capital
		}

		drawdown := peak.Sub(capital).Div(peak)
		if drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = drawdown
		}
	}

	metrics.TotalReturn = capital.Sub(one).InexactFloat64()
	metrics.MaxDrawdown = maxDrawdown.InexactFloat64()
	metrics.AnnualReturn = annualize(metrics.TotalReturn, bars)
	metrics.AvgTradeReturn = mean(returns)
	metrics.SharpeRatio = sharpeRatio(returns)

	if wins+losses > 0 {
		metrics.WinRate = float64(wins) / float64(wins+losses)
	}

	if losses > 0 {
		avgWin := 0.0
		if wins > 0 {
			avgWin = grossProfit / float64(wins)
		}

		metrics.ProfitFactor = avgWin / (grossLoss / float64(losses))
	}

	metrics.Passed = metrics.AnnualReturn >= thresholds.MinAnnualReturn &&
		metrics.MaxDrawdown <= thresholds.MaxDrawdown &&
		metrics.TotalTrades >= thresholds.MinTrades &&
		metrics.WinRate >= thresholds.MinWinRate

	return metrics
}

// annualize compounds the total return over the elapsed calendar span of the
// bars. Series spanning no time annualize to zero.
func annualize(totalReturn float64, bars []types.PriceBar) float64 {
	if len(bars) < 2 {
		return 0
	}

	elapsedDays := bars[len(bars)-1].Time.Sub(bars[0].Time).Hours() / 24
	if elapsedDays <= 0 {
		return 0
	}

	return math.Pow(1+totalReturn, 365/elapsedDays) - 1
}

// benchmarkReturn is the buy-and-hold return over the same bars.
func benchmarkReturn(bars []types.PriceBar) float64 {
	if len(bars) < 2 || bars[0].Close == 0 {
		return 0
	}

	return bars[len(bars)-1].Close/bars[0].Close - 1
}

// sharpeRatio is the per-trade mean over sample standard deviation, scaled
// by the square root of the trading year. Degenerate return series (fewer
// than two trades, zero dispersion) report zero rather than blowing up.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)

	var variance float64
	for _, r := range returns {
		d := r - m
		variance += d * d
	}

	variance /= float64(len(returns) - 1)

	stdev := math.Sqrt(variance)
	if stdev == 0 {
		return 0
	}

	return m / stdev * math.Sqrt(tradingDaysPerYear)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
