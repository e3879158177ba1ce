// Package significance decides whether a set of monitored signal returns
// shows real edge or noise.
package significance

import (
	"math"

	"github.com/januswing/strategy-miner/internal/types"
)

const (
	// MinSampleSize is the smallest sample a z-test is allowed to judge.
	// Anything smaller reports insufficient data instead of a verdict.
	MinSampleSize = 30

	alpha = 0.05
)

// Test runs a two-tailed one-sample z-test of the mean return against zero.
func Test(returns []float64) types.SignificanceResult {
	n := len(returns)

	result := types.SignificanceResult{SampleSize: n}

	if n < MinSampleSize {
		return result
	}

	result.Sufficient = true

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(n)
	result.Mean = mean

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}

	variance /= float64(n - 1)
	result.StdDev = math.Sqrt(variance)

	if result.StdDev == 0 {
		// No dispersion at all: identical returns carry no evidence the
		// z-test can weigh.
		return result
	}

	standardError := result.StdDev / math.Sqrt(float64(n))
	result.ZScore = mean / standardError
	result.PValue = 2 * (1 - normalCDF(math.Abs(result.ZScore)))
	result.Significant = result.PValue < alpha

	return result
}

// Confidence maps a test result to a 0-100 score. Insufficient samples sit
// at 30, insignificant results at 20, significant ones scale with the
// p-value and sample size.
func Confidence(result types.SignificanceResult) float64 {
	if !result.Sufficient {
		return 30
	}

	if !result.Significant {
		return 20
	}

	confidence := 50 + (1-result.PValue)*40 + math.Min(float64(result.SampleSize)/100, 10)

	return math.Min(confidence, 100)
}

// normalCDF is the standard normal cumulative distribution function.
func normalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
