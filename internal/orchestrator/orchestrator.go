// Package orchestrator drives candidate validation end to end: classify,
// dispatch to the right validation method, persist the verdict, notify.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/januswing/strategy-miner/internal/backtest"
	"github.com/januswing/strategy-miner/internal/classifier"
	"github.com/januswing/strategy-miner/internal/logger"
	"github.com/januswing/strategy-miner/internal/notifier"
	"github.com/januswing/strategy-miner/internal/parser"
	"github.com/januswing/strategy-miner/internal/store"
	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
	"github.com/januswing/strategy-miner/pkg/marketdata"
)

// Options configures an Orchestrator. Store and Provider are required; the
// rest fall back to sensible defaults.
type Options struct {
	Store    store.Store
	Provider marketdata.Provider
	Notifier notifier.Notifier
	Logger   *logger.Logger

	Symbol     string
	Interval   types.Interval
	Bars       int
	FeeRate    float64
	Thresholds types.PassThresholds

	// ShowProgress enables the batch progress bar in ValidateAll.
	ShowProgress bool
}

// Orchestrator validates strategy candidates.
type Orchestrator struct {
	store      store.Store
	provider   marketdata.Provider
	notifier   notifier.Notifier
	engine     *backtest.Engine
	logger     *logger.Logger
	symbol     string
	interval   types.Interval
	bars       int
	progress   bool
}

// New validates the options and builds an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "orchestrator requires a candidate store")
	}

	if opts.Provider == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "orchestrator requires a market data provider")
	}

	if opts.Notifier == nil {
		opts.Notifier = notifier.Noop{}
	}

	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	if opts.Symbol == "" {
		opts.Symbol = "BTCUSDT"
	}

	if !opts.Interval.IsValid() {
		opts.Interval = types.Interval1d
	}

	if opts.Bars <= 0 {
		opts.Bars = 200
	}

	return &Orchestrator{
		store:    opts.Store,
		provider: opts.Provider,
		notifier: opts.Notifier,
		engine:   backtest.NewEngine(opts.FeeRate, opts.Thresholds, opts.Logger),
		logger:   opts.Logger,
		symbol:   opts.Symbol,
		interval: opts.Interval,
		bars:     opts.Bars,
		progress: opts.ShowProgress,
	}, nil
}

// ValidateOne validates a single candidate by ID and persists the verdict.
// Candidates that cannot be judged right now (provider down, tier needs a
// live monitor) keep their pending status.
func (o *Orchestrator) ValidateOne(ctx context.Context, id int64) (types.ValidationResult, error) {
	candidate, err := o.store.Get(ctx, id)
	if err != nil {
		return types.ValidationResult{}, err
	}

	text := candidate.Description()
	tier := classifier.Classify(text)

	result := types.ValidationResult{
		CandidateID: id,
		RunID:       uuid.New(),
		Tier:        tier,
		Method:      classifier.MethodFor(tier),
		ValidatedAt: time.Now().UTC(),
	}

	switch tier {
	case types.TierTrend:
		if err := o.runBacktest(ctx, candidate, text, &result); err != nil {
			return result, err
		}
	case types.TierHighFrequency:
		// Daily bars say nothing about microstructure edges; a bounded
		// live monitoring run is needed instead.
		result.Notes = "high-frequency strategy: requires a bounded live monitoring run"
		result.Confidence = 30
	case types.TierFundamental:
		result.Notes = "fundamental strategy: no financial statement data available"
		result.Confidence = 0
	}

	return result, nil
}

func (o *Orchestrator) runBacktest(ctx context.Context, candidate types.StrategyCandidate, text string, result *types.ValidationResult) error {
	bars, err := o.provider.GetBars(ctx, o.symbol, o.interval, o.bars)
	if err != nil {
		// The candidate stays pending so a later run can retry.
		o.logger.Error("market data unavailable, candidate left pending",
			zap.Int64("candidate_id", candidate.ID),
			zap.Error(err),
		)

		return err
	}

	spec := parser.Parse(text)
	if spec.Kind == types.KindUnknown {
		// Unparseable descriptions get the conservative long-term
		// crossover treatment.
		spec.Kind = types.KindMACrossover
		spec.SlowWindow = 50
	}

	run, err := o.engine.Run(bars, spec)
	if err != nil {
		o.logger.Error("backtest failed, candidate left pending",
			zap.Int64("candidate_id", candidate.ID),
			zap.String("kind", string(spec.Kind)),
			zap.Error(err),
		)

		return err
	}

	metrics := run.Metrics
	result.Metrics = optional.Some(metrics)
	result.Confidence = confidenceScore(metrics)

	if metrics.TotalTrades == 0 {
		result.Notes = "no trade signals in the test window"
	}

	status := types.StatusRejected
	if metrics.Passed {
		status = types.StatusPassed
	}

	err = o.store.Update(ctx, candidate.ID, func(c *types.StrategyCandidate) error {
		c.Status = status
		c.ValidatedAt = optional.Some(result.ValidatedAt)
		c.BacktestResult = optional.Some(metrics)

		return nil
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreConflict, err, "failed to persist verdict for candidate %d", candidate.ID)
	}

	o.logger.Info("candidate validated",
		zap.Int64("candidate_id", candidate.ID),
		zap.String("status", string(status)),
		zap.Float64("annual_return", metrics.AnnualReturn),
		zap.Int("trades", metrics.TotalTrades),
		zap.Float64("confidence", result.Confidence),
	)

	if metrics.Passed {
		if err := o.notifier.NotifyPassed(ctx, candidate, metrics); err != nil {
			// Delivery is best effort; the verdict is already persisted.
			o.logger.Warn("failed to notify passed candidate",
				zap.Int64("candidate_id", candidate.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// confidenceScore grades a backtest 0-100. Beating buy-and-hold lifts the
// base; the win rate fine-tunes within the band.
func confidenceScore(metrics types.BacktestMetrics) float64 {
	if metrics.TotalTrades == 0 {
		return 30
	}

	if metrics.TotalReturn > metrics.BenchmarkReturn {
		return 70 + metrics.WinRate*20
	}

	return 40 + metrics.WinRate*10
}

// ValidateAll validates every pending candidate. A failure on one candidate
// is logged and the batch moves on.
func (o *Orchestrator) ValidateAll(ctx context.Context) ([]types.ValidationResult, error) {
	pending, err := o.store.ListByStatus(ctx, types.StatusPending)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if o.progress && len(pending) > 0 {
		bar = progressbar.Default(int64(len(pending)), "validating")
	}

	results := make([]types.ValidationResult, 0, len(pending))

	for _, candidate := range pending {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := o.ValidateOne(ctx, candidate.ID)
		if err != nil {
			o.logger.Error("candidate validation failed",
				zap.Int64("candidate_id", candidate.ID),
				zap.Error(err),
			)
		} else {
			results = append(results, result)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return results, nil
}
