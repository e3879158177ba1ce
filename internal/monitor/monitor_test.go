package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// scriptedQuotes replays a fixed price sequence, then repeats the last
// price forever.
type scriptedQuotes struct {
	prices []float64
	calls  int
	fail   bool
}

func (s *scriptedQuotes) GetQuote(_ context.Context, symbol string) (types.Quote, error) {
	if s.fail {
		s.calls++
		return types.Quote{}, errors.New(errors.ErrCodeMonitorFetchFailed, "exchange unreachable")
	}

	idx := s.calls
	if idx >= len(s.prices) {
		idx = len(s.prices) - 1
	}

	s.calls++

	price := s.prices[idx]

	return types.Quote{
		Symbol: symbol,
		Bid:    price * 0.9999,
		Ask:    price * 1.0001,
		Last:   price,
		Time:   time.Now().UTC(),
	}, nil
}

type MonitorTestSuite struct {
	suite.Suite
}

func TestMonitorSuite(t *testing.T) {
	suite.Run(t, new(MonitorTestSuite))
}

func (suite *MonitorTestSuite) TestNewTaskValidation() {
	_, err := NewTask(Options{Symbol: "BTCUSDT", Duration: time.Hour})
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeMissingParameter, errors.GetCode(err))

	_, err = NewTask(Options{Provider: &scriptedQuotes{}, Duration: time.Hour})
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeMissingParameter, errors.GetCode(err))

	_, err = NewTask(Options{Provider: &scriptedQuotes{}, Symbol: "BTCUSDT"})
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (suite *MonitorTestSuite) TestRunStopsAtDeadline() {
	provider := &scriptedQuotes{prices: []float64{100}}

	task, err := NewTask(Options{
		Provider: provider,
		Symbol:   "BTCUSDT",
		Interval: time.Millisecond,
		Duration: 100 * time.Millisecond,
	})
	suite.Require().NoError(err)

	start := time.Now()
	suite.Require().NoError(task.Run(context.Background()))
	elapsed := time.Since(start)

	suite.GreaterOrEqual(elapsed, 100*time.Millisecond)
	suite.Less(elapsed, 5*time.Second)
	suite.Positive(task.Stats().SampleCount)
}

func (suite *MonitorTestSuite) TestRunStopsOnCancel() {
	provider := &scriptedQuotes{prices: []float64{100}}

	task, err := NewTask(Options{
		Provider: provider,
		Symbol:   "BTCUSDT",
		Interval: time.Millisecond,
		Duration: time.Hour,
	})
	suite.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = task.Run(ctx)
	suite.Less(time.Since(start), 5*time.Second)
	suite.ErrorIs(err, context.DeadlineExceeded)
}

func (suite *MonitorTestSuite) TestFetchErrorsDoNotAbort() {
	provider := &scriptedQuotes{fail: true}

	task, err := NewTask(Options{
		Provider:     provider,
		Symbol:       "BTCUSDT",
		Interval:     time.Millisecond,
		Duration:     50 * time.Millisecond,
		ErrorBackoff: time.Millisecond,
	})
	suite.Require().NoError(err)

	suite.Require().NoError(task.Run(context.Background()))
	suite.Greater(provider.calls, 1, "failed fetches should be retried")
	suite.Zero(task.Stats().SampleCount)
}

func (suite *MonitorTestSuite) TestMomentumBuySignalAndResolution() {
	task, err := NewTask(Options{
		Provider: &scriptedQuotes{},
		Symbol:   "BTCUSDT",
		Duration: time.Hour,
	})
	suite.Require().NoError(err)

	now := time.Now().UTC()

	// Ten flat samples establish the baseline.
	for i := 0; i < 10; i++ {
		task.observe(types.Quote{Symbol: "BTCUSDT", Last: 100, Time: now})
	}

	suite.Empty(task.Signals())

	// A 2% jump over the baseline mean triggers a buy.
	task.observe(types.Quote{Symbol: "BTCUSDT", Last: 102, Time: now})

	signals := task.Signals()
	suite.Require().Len(signals, 1)
	suite.Equal(SignalBuy, signals[0].Type)
	suite.Equal(102.0, signals[0].Price)
	suite.Empty(task.Returns(), "signal resolves on the next sample")

	// The next sample settles the signal.
	task.observe(types.Quote{Symbol: "BTCUSDT", Last: 103.02, Time: now})

	returns := task.Returns()
	suite.Require().Len(returns, 1)
	suite.InDelta(0.01, returns[0], 1e-9)
}

func (suite *MonitorTestSuite) TestMomentumSellSignal() {
	task, err := NewTask(Options{
		Provider: &scriptedQuotes{},
		Symbol:   "BTCUSDT",
		Duration: time.Hour,
	})
	suite.Require().NoError(err)

	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		task.observe(types.Quote{Symbol: "BTCUSDT", Last: 100, Time: now})
	}

	task.observe(types.Quote{Symbol: "BTCUSDT", Last: 98, Time: now})

	signals := task.Signals()
	suite.Require().Len(signals, 1)
	suite.Equal(SignalSell, signals[0].Type)

	// Price keeps falling: the sell signal realizes a positive return.
	task.observe(types.Quote{Symbol: "BTCUSDT", Last: 97, Time: now})

	returns := task.Returns()
	suite.Require().Len(returns, 1)
	suite.Positive(returns[0])
}

func (suite *MonitorTestSuite) TestSmallMovesProduceNoSignal() {
	task, err := NewTask(Options{
		Provider: &scriptedQuotes{},
		Symbol:   "BTCUSDT",
		Duration: time.Hour,
	})
	suite.Require().NoError(err)

	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		task.observe(types.Quote{Symbol: "BTCUSDT", Last: 100, Time: now})
	}

	// Half a percent is inside the threshold.
	task.observe(types.Quote{Symbol: "BTCUSDT", Last: 100.5, Time: now})

	suite.Empty(task.Signals())
}

func (suite *MonitorTestSuite) TestRunGathersScriptedSignals() {
	prices := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 102, 103, 100}

	task, err := NewTask(Options{
		Provider: &scriptedQuotes{prices: prices},
		Symbol:   "BTCUSDT",
		Interval: time.Millisecond,
		Duration: 200 * time.Millisecond,
	})
	suite.Require().NoError(err)

	require.NoError(suite.T(), task.Run(context.Background()))

	stats := task.Stats()
	assert.GreaterOrEqual(suite.T(), stats.SampleCount, len(prices))
	assert.Positive(suite.T(), stats.SignalCount)
	assert.NotEmpty(suite.T(), task.Returns())
}
