// Package classifier assigns a harvested strategy description to a coarse
// tier that decides how it gets validated. High-frequency strategies cannot
// be judged with daily bars and go to the real-time monitor; fundamental
// strategies need financial statement data this system does not carry.
package classifier

import (
	"strings"

	"github.com/januswing/strategy-miner/internal/types"
)

// bucket keywords are checked in order: a high-frequency marker outranks a
// trend marker in the same text, and trend outranks fundamental.
var (
	hfKeywords = []string{
		"orderbook", "order book", "bid-ask", "bid ask", "spread",
		"latency", "hft", "high frequency", "high-frequency",
		"market making", "market-making", "arbitrage", "tick",
	}
	trendKeywords = []string{
		"ma", "moving average", "crossover", "cross", "rsi", "macd",
		"bollinger", "trend", "momentum", "breakout",
	}
	fundamentalKeywords = []string{
		"pe", "p/e", "roe", "dividend", "earnings", "financial",
		"ratio", "valuation", "balance sheet", "fundamental",
	}
)

// Classify maps a strategy description to its validation tier. Text that
// matches nothing defaults to the trend tier so it still gets a backtest.
func Classify(text string) types.Tier {
	lower := strings.ToLower(text)

	if containsAny(lower, hfKeywords) {
		return types.TierHighFrequency
	}

	if containsAny(lower, trendKeywords) {
		return types.TierTrend
	}

	if containsAny(lower, fundamentalKeywords) {
		return types.TierFundamental
	}

	return types.TierTrend
}

// MethodFor returns the validation method a tier is judged with.
func MethodFor(tier types.Tier) types.ValidationMethod {
	switch tier {
	case types.TierHighFrequency:
		return types.MethodMonitor
	case types.TierTrend:
		return types.MethodBacktest
	case types.TierFundamental:
		return types.MethodUnsupported
	}

	return types.MethodUnsupported
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if matchKeyword(text, keyword) {
			return true
		}
	}

	return false
}

// matchKeyword does whole-word matching for short keywords so that "ma" does
// not fire inside "market" or "pe" inside "percent".
func matchKeyword(text, keyword string) bool {
	if len(keyword) > 3 || strings.ContainsAny(keyword, " -/") {
		return strings.Contains(text, keyword)
	}

	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}

		start := idx + i
		end := start + len(keyword)

		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])

		if beforeOK && afterOK {
			return true
		}

		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
