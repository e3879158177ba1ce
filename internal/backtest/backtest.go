package backtest

import (
	"go.uber.org/zap"

	"github.com/januswing/strategy-miner/internal/indicator"
	"github.com/januswing/strategy-miner/internal/logger"
	"github.com/januswing/strategy-miner/internal/types"
)

// Engine wires indicator computation, trade simulation and metrics into one
// backtest run.
type Engine struct {
	feeRate    float64
	thresholds types.PassThresholds
	logger     *logger.Logger
}

// NewEngine creates a backtest engine with the given fee rate and pass
// thresholds.
func NewEngine(feeRate float64, thresholds types.PassThresholds, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		feeRate:    feeRate,
		thresholds: thresholds,
		logger:     log,
	}
}

// Result bundles the metrics with the trades that produced them.
type Result struct {
	Metrics types.BacktestMetrics
	Trades  []types.Trade
}

// Run backtests one strategy spec over the given bars.
func (e *Engine) Run(bars []types.PriceBar, spec types.StrategySpec) (Result, error) {
	frame, err := indicator.Compute(bars, spec)
	if err != nil {
		return Result{}, err
	}

	trades := Simulate(frame, spec)
	metrics := ComputeMetrics(trades, bars, e.feeRate, e.thresholds)

	e.logger.Debug("backtest complete",
		zap.String("kind", string(spec.Kind)),
		zap.Int("bars", len(bars)),
		zap.Int("trades", len(trades)),
		zap.Float64("annual_return", metrics.AnnualReturn),
		zap.Float64("max_drawdown", metrics.MaxDrawdown),
		zap.Bool("passed", metrics.Passed),
	)

	return Result{Metrics: metrics, Trades: trades}, nil
}
