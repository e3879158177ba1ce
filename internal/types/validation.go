package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
)

// Tier is the coarse strategy category that decides how a candidate is
// validated.
type Tier string

const (
	TierHighFrequency Tier = "hf"
	TierTrend         Tier = "trend"
	TierFundamental   Tier = "fundamental"
)

// ValidationMethod names the procedure used to judge a candidate.
type ValidationMethod string

const (
	MethodBacktest    ValidationMethod = "backtest"
	MethodMonitor     ValidationMethod = "monitor"
	MethodStatistical ValidationMethod = "statistical"
	MethodUnsupported ValidationMethod = "unsupported"
)

// SignificanceResult is the outcome of the z-test over monitored signal
// returns.
type SignificanceResult struct {
	SampleSize  int     `json:"sample_size" yaml:"sample_size"`
	Sufficient  bool    `json:"sufficient" yaml:"sufficient"`
	Mean        float64 `json:"mean" yaml:"mean"`
	StdDev      float64 `json:"std_dev" yaml:"std_dev"`
	ZScore      float64 `json:"z_score" yaml:"z_score"`
	PValue      float64 `json:"p_value" yaml:"p_value"`
	Significant bool    `json:"significant" yaml:"significant"`
}

// ValidationResult records one validation run of one candidate.
type ValidationResult struct {
	CandidateID       int64            `json:"candidate_id"`
	RunID             uuid.UUID        `json:"run_id"`
	Tier              Tier             `json:"tier"`
	Method            ValidationMethod `json:"method"`
	SignalCount       int              `json:"signal_count"`
	SamplePeriodHours float64          `json:"sample_period_hours"`
	Confidence        float64          `json:"confidence"`
	Notes             string           `json:"notes"`
	ValidatedAt       time.Time        `json:"validated_at"`

	Metrics      optional.Option[BacktestMetrics]    `json:"metrics,omitempty"`
	Significance optional.Option[SignificanceResult] `json:"significance,omitempty"`
}

// Passed reports whether the run's backtest metrics cleared the thresholds.
// Runs without metrics never pass.
func (r *ValidationResult) Passed() bool {
	m, err := r.Metrics.Take()
	if err != nil {
		return false
	}
	return m.Passed
}
