package types

// BacktestMetrics is the performance summary produced by the metrics
// calculator for one simulated trade list.
type BacktestMetrics struct {
	AnnualReturn    float64 `json:"annual_return" yaml:"annual_return"`
	TotalReturn     float64 `json:"total_return" yaml:"total_return"`
	BenchmarkReturn float64 `json:"benchmark_return" yaml:"benchmark_return"`
	MaxDrawdown     float64 `json:"max_drawdown" yaml:"max_drawdown"`
	WinRate         float64 `json:"win_rate" yaml:"win_rate"`
	TotalTrades     int     `json:"total_trades" yaml:"total_trades"`
	ProfitFactor    float64 `json:"profit_factor" yaml:"profit_factor"`
	SharpeRatio     float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	AvgTradeReturn  float64 `json:"avg_trade_return" yaml:"avg_trade_return"`
	Passed          bool    `json:"passed" yaml:"passed"`
}

// PassThresholds are the configurable hurdles a backtest must clear for the
// candidate to pass.
type PassThresholds struct {
	MinAnnualReturn float64 `json:"min_annual_return" yaml:"min_annual_return" validate:"gte=0"`
	MaxDrawdown     float64 `json:"max_drawdown" yaml:"max_drawdown" validate:"gt=0,lte=1"`
	MinTrades       int     `json:"min_trades" yaml:"min_trades" validate:"gte=0"`
	MinWinRate      float64 `json:"min_win_rate" yaml:"min_win_rate" validate:"gte=0,lte=1"`
}

// DefaultThresholds returns the standard pass hurdles.
func DefaultThresholds() PassThresholds {
	return PassThresholds{
		MinAnnualReturn: 0.12,
		MaxDrawdown:     0.10,
		MinTrades:       100,
		MinWinRate:      0.55,
	}
}
