package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/januswing/strategy-miner/internal/store"
	"github.com/januswing/strategy-miner/internal/store/memory"
	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
	"github.com/januswing/strategy-miner/pkg/marketdata"
)

type failingProvider struct{}

func (failingProvider) GetBars(context.Context, string, types.Interval, int) ([]types.PriceBar, error) {
	return nil, errors.New(errors.ErrCodeHistoricalDataFailed, "exchange unreachable")
}

type recordingNotifier struct {
	notified []int64
	fail     bool
}

func (n *recordingNotifier) NotifyPassed(_ context.Context, candidate types.StrategyCandidate, _ types.BacktestMetrics) error {
	n.notified = append(n.notified, candidate.ID)

	if n.fail {
		return errors.New(errors.ErrCodeDataSourceUnavailable, "webhook down")
	}

	return nil
}

type OrchestratorTestSuite struct {
	suite.Suite

	store *memory.Store
	ctx   context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (suite *OrchestratorTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.ctx = context.Background()
}

func (suite *OrchestratorTestSuite) addCandidate(id int64, logic string) {
	suite.Require().NoError(suite.store.Insert(suite.ctx, types.StrategyCandidate{
		ID:             id,
		Source:         "reddit",
		Title:          "candidate",
		ExtractedLogic: logic,
		DiscoveredAt:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:         types.StatusPending,
	}))
}

// lenientThresholds make any profitable single-trade run pass.
func lenientThresholds() types.PassThresholds {
	return types.PassThresholds{
		MinAnnualReturn: 0,
		MaxDrawdown:     1,
		MinTrades:       1,
		MinWinRate:      0,
	}
}

func (suite *OrchestratorTestSuite) newOrchestrator(opts Options) *Orchestrator {
	if opts.Store == nil {
		opts.Store = suite.store
	}

	if opts.Provider == nil {
		opts.Provider = marketdata.NewTrendingProvider(0.005)
	}

	if opts.Thresholds == (types.PassThresholds{}) {
		opts.Thresholds = types.DefaultThresholds()
	}

	o, err := New(opts)
	suite.Require().NoError(err)

	return o
}

func (suite *OrchestratorTestSuite) TestNewRequiresStoreAndProvider() {
	_, err := New(Options{Provider: marketdata.NewFlatProvider()})
	suite.Require().Error(err)

	_, err = New(Options{Store: suite.store})
	suite.Require().Error(err)
}

func (suite *OrchestratorTestSuite) TestValidateOnePassesAndNotifies() {
	suite.addCandidate(1, "buy when the 10 day MA crosses above the 20 day MA")

	notified := &recordingNotifier{}
	o := suite.newOrchestrator(Options{Notifier: notified, Thresholds: lenientThresholds()})

	result, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	suite.Equal(types.TierTrend, result.Tier)
	suite.Equal(types.MethodBacktest, result.Method)
	suite.True(result.Passed())
	suite.NotEqual(uuid.Nil, result.RunID)

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusPassed, candidate.Status)
	suite.False(candidate.ValidatedAt.IsNone())
	suite.False(candidate.BacktestResult.IsNone())

	suite.Equal([]int64{1}, notified.notified)
}

func (suite *OrchestratorTestSuite) TestValidateOneRejectsUnderDefaultThresholds() {
	suite.addCandidate(1, "buy when the 10 day MA crosses above the 20 day MA")

	o := suite.newOrchestrator(Options{})

	result, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.False(result.Passed(), "one trade cannot clear the default trade count")

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusRejected, candidate.Status)
}

func (suite *OrchestratorTestSuite) TestZeroTradeConfidence() {
	suite.addCandidate(1, "buy when the 10 day MA crosses above the 20 day MA")

	o := suite.newOrchestrator(Options{Provider: marketdata.NewFlatProvider()})

	result, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	suite.Equal(30.0, result.Confidence)
	suite.Equal("no trade signals in the test window", result.Notes)

	metrics, takeErr := result.Metrics.Take()
	suite.Require().NoError(takeErr)
	suite.Equal(0, metrics.TotalTrades)
	suite.Equal(1.0, metrics.MaxDrawdown)
}

func (suite *OrchestratorTestSuite) TestWindowLongerThanHistoryRejects() {
	// The parsed window exceeds the configured bar count; the candidate
	// must get a zero-trade rejection, not stay pending for a retry.
	suite.addCandidate(1, "buy when price crosses the 250 day moving average")

	o := suite.newOrchestrator(Options{})

	result, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	suite.Equal(30.0, result.Confidence)
	suite.Equal("no trade signals in the test window", result.Notes)

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusRejected, candidate.Status)
}

func (suite *OrchestratorTestSuite) TestUnknownStrategyGetsCrossoverTreatment() {
	suite.addCandidate(1, "buy low sell high, trust me")

	o := suite.newOrchestrator(Options{})

	result, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	// Unknown text still gets a backtest via the default crossover spec.
	suite.Equal(types.MethodBacktest, result.Method)
	suite.False(result.Metrics.IsNone())

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.NotEqual(types.StatusPending, candidate.Status)
}

func (suite *OrchestratorTestSuite) TestHighFrequencyLeftPending() {
	suite.addCandidate(1, "market making on orderbook imbalance with tight spread")

	o := suite.newOrchestrator(Options{})

	result, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	suite.Equal(types.TierHighFrequency, result.Tier)
	suite.Equal(types.MethodMonitor, result.Method)
	suite.True(result.Metrics.IsNone())

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusPending, candidate.Status)
}

func (suite *OrchestratorTestSuite) TestFundamentalLeftPending() {
	suite.addCandidate(1, "screen for low P/E and high dividend yield")

	o := suite.newOrchestrator(Options{})

	result, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	suite.Equal(types.TierFundamental, result.Tier)
	suite.Equal(types.MethodUnsupported, result.Method)

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusPending, candidate.Status)
}

func (suite *OrchestratorTestSuite) TestProviderFailureKeepsCandidatePending() {
	suite.addCandidate(1, "buy when the 10 day MA crosses above the 20 day MA")

	o := suite.newOrchestrator(Options{Provider: failingProvider{}})

	_, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().Error(err)

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusPending, candidate.Status)
}

func (suite *OrchestratorTestSuite) TestValidateOneMissingCandidate() {
	o := suite.newOrchestrator(Options{})

	_, err := o.ValidateOne(suite.ctx, 404)
	suite.ErrorIs(err, store.ErrNotFound)
}

func (suite *OrchestratorTestSuite) TestNotifierFailureDoesNotFailValidation() {
	suite.addCandidate(1, "buy when the 10 day MA crosses above the 20 day MA")

	notified := &recordingNotifier{fail: true}
	o := suite.newOrchestrator(Options{Notifier: notified, Thresholds: lenientThresholds()})

	_, err := o.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusPassed, candidate.Status)
}

func (suite *OrchestratorTestSuite) TestValidateAllContinuesPastFailures() {
	suite.addCandidate(1, "buy when the 10 day MA crosses above the 20 day MA")
	suite.addCandidate(2, "screen for low P/E and high dividend yield")
	suite.addCandidate(3, "buy when RSI below 30, sell above 50")

	o := suite.newOrchestrator(Options{})

	results, err := o.ValidateAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(results, 3)

	// Re-running only picks up what is still pending.
	results, err = o.ValidateAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(results, 1, "only the fundamental candidate is still pending")
}

func (suite *OrchestratorTestSuite) TestValidateAllEmptyStore() {
	o := suite.newOrchestrator(Options{})

	results, err := o.ValidateAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(results)
}

func (suite *OrchestratorTestSuite) TestRevalidationOverwritesVerdict() {
	suite.addCandidate(1, "buy when the 10 day MA crosses above the 20 day MA")

	rejecting := suite.newOrchestrator(Options{})

	_, err := rejecting.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	candidate, err := suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusRejected, candidate.Status)

	accepting := suite.newOrchestrator(Options{Thresholds: lenientThresholds()})

	_, err = accepting.ValidateOne(suite.ctx, 1)
	suite.Require().NoError(err)

	candidate, err = suite.store.Get(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(types.StatusPassed, candidate.Status)
}
