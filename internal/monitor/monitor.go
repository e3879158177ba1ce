// Package monitor samples live quotes for a bounded period and records
// momentum signals with their realized returns. High-frequency candidates
// cannot be judged on daily bars, so they are watched live instead.
package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/januswing/strategy-miner/internal/logger"
	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
	"github.com/januswing/strategy-miner/pkg/marketdata"
)

const (
	momentumWindow      = 10
	momentumThreshold   = 0.01
	defaultInterval     = 60 * time.Second
	defaultErrorBackoff = 5 * time.Second
)

// SignalType marks the direction of a momentum signal.
type SignalType string

const (
	SignalBuy  SignalType = "buy"
	SignalSell SignalType = "sell"
)

// Signal is one momentum trigger observed during the run.
type Signal struct {
	Type  SignalType
	Price float64
	Time  time.Time
}

// Stats summarises a finished (or in-flight) monitoring run.
type Stats struct {
	SampleCount  int
	SignalCount  int
	ElapsedHours float64
}

// Options configures a monitoring task.
type Options struct {
	Provider marketdata.QuoteProvider
	Symbol   string
	// Interval is the sampling cadence. Defaults to one minute.
	Interval time.Duration
	// Duration bounds the run; the task stops on its own when it elapses.
	Duration time.Duration
	// ErrorBackoff is the pause after a failed fetch. Defaults to 5s.
	ErrorBackoff time.Duration
	Logger       *logger.Logger
}

// Task is one bounded monitoring run. It is not safe for concurrent use;
// Run executes in the caller's goroutine and stops at the deadline or when
// the context is cancelled.
type Task struct {
	provider     marketdata.QuoteProvider
	symbol       string
	interval     time.Duration
	duration     time.Duration
	errorBackoff time.Duration
	logger       *logger.Logger

	samples []float64
	signals []Signal
	pending *Signal
	returns []float64

	startedAt time.Time
	stoppedAt time.Time
}

// NewTask validates the options and builds a task.
func NewTask(opts Options) (*Task, error) {
	if opts.Provider == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "monitor requires a quote provider")
	}

	if opts.Symbol == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "monitor requires a symbol")
	}

	if opts.Duration <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "monitor duration must be positive, got %s", opts.Duration)
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = defaultErrorBackoff
	}

	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	return &Task{
		provider:     opts.Provider,
		symbol:       opts.Symbol,
		interval:     opts.Interval,
		duration:     opts.Duration,
		errorBackoff: opts.ErrorBackoff,
		logger:       opts.Logger,
	}, nil
}

// Run samples quotes until the deadline passes or the context is cancelled.
// Fetch failures are logged and retried after a backoff; they never abort
// the run early.
func (t *Task) Run(ctx context.Context) error {
	t.startedAt = time.Now()
	deadline := t.startedAt.Add(t.duration)

	defer func() {
		t.stoppedAt = time.Now()
	}()

	for time.Now().Before(deadline) {
		quote, err := t.provider.GetQuote(ctx, t.symbol)
		if err != nil {
			t.logger.Warn("quote fetch failed",
				zap.String("symbol", t.symbol),
				zap.Error(err),
			)

			if stop := t.sleep(ctx, t.errorBackoff); stop {
				return ctx.Err()
			}

			continue
		}

		t.observe(quote)

		if stop := t.sleep(ctx, t.interval); stop {
			return ctx.Err()
		}
	}

	return nil
}

// observe folds one quote into the sample history: it first settles the
// previous open signal against the new price, then checks for a fresh
// momentum trigger.
func (t *Task) observe(quote types.Quote) {
	price := quote.Last

	if t.pending != nil {
		realized := (price - t.pending.Price) / t.pending.Price
		if t.pending.Type == SignalSell {
			realized = -realized
		}

		t.returns = append(t.returns, realized)
		t.pending = nil
	}

	if len(t.samples) >= momentumWindow {
		mean := meanOfTail(t.samples, momentumWindow)

		var signalType SignalType

		switch {
		case price > mean*(1+momentumThreshold):
			signalType = SignalBuy
		case price < mean*(1-momentumThreshold):
			signalType = SignalSell
		}

		if signalType != "" {
			signal := Signal{Type: signalType, Price: price, Time: quote.Time}
			t.signals = append(t.signals, signal)
			t.pending = &signal

			t.logger.Info("momentum signal",
				zap.String("symbol", t.symbol),
				zap.String("type", string(signalType)),
				zap.Float64("price", price),
			)
		}
	}

	t.samples = append(t.samples, price)
}

// sleep waits for d or until the context is cancelled. Returns true when
// the run should stop.
func (t *Task) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

// Stats reports what the run has gathered so far.
func (t *Task) Stats() Stats {
	end := t.stoppedAt
	if end.IsZero() {
		end = time.Now()
	}

	elapsed := 0.0
	if !t.startedAt.IsZero() {
		elapsed = end.Sub(t.startedAt).Hours()
	}

	return Stats{
		SampleCount:  len(t.samples),
		SignalCount:  len(t.signals),
		ElapsedHours: elapsed,
	}
}

// Returns exposes the realized signal returns gathered so far. They feed
// the significance test.
func (t *Task) Returns() []float64 {
	out := make([]float64, len(t.returns))
	copy(out, t.returns)

	return out
}

// Signals exposes the momentum signals observed so far.
func (t *Task) Signals() []Signal {
	out := make([]Signal, len(t.signals))
	copy(out, t.signals)

	return out
}

func meanOfTail(values []float64, n int) float64 {
	if len(values) < n {
		n = len(values)
	}

	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}

	return sum / float64(n)
}
