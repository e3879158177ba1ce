// Package parser turns free-text strategy descriptions into machine-readable
// strategy specs. Parsing never fails: text that matches no rule comes back
// with Kind set to unknown and every parameter at its default.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/moznion/go-optional"

	"github.com/januswing/strategy-miner/internal/types"
)

// categoryRule binds a strategy kind to the pattern that recognises it. The
// rules table is ordered by priority: the first matching rule decides the
// kind, so more specific categories (RSI, Bollinger) must come before the
// broad moving-average and trend rules.
type categoryRule struct {
	kind    types.StrategyKind
	pattern *regexp.Regexp
}

var categoryRules = []categoryRule{
	{types.KindRSIOverbought, regexp.MustCompile(`rsi.*(?:\bshort\b|overbought)|(?:\bshort\b|overbought).*rsi`)},
	{types.KindRSIOversold, regexp.MustCompile(`\brsi\b`)},
	{types.KindBollingerBands, regexp.MustCompile(`bollinger|\bbands?\b`)},
	{types.KindMACrossover, regexp.MustCompile(`moving average|\bs?ma\b|\bema\b|golden cross|death cross|cross(?:es|over|ing)?\b`)},
	{types.KindTrendFollowing, regexp.MustCompile(`\btrend\b|momentum|breakout`)},
}

var (
	maWindowRe   = regexp.MustCompile(`(\d+)[\s-]*(?:day|period|bar|hour|week)?\s*(?:moving average|\bs?ma\b|\bema\b)`)
	rsiPeriodRe  = regexp.MustCompile(`(\d+)[\s-]*(?:day|period|bar)?\s*rsi|rsi\s*\(?(\d+)\)?`)
	oversoldRe   = regexp.MustCompile(`(?:below|under|dips? below|drops? below|<=?)\s*(\d+)`)
	overboughtRe = regexp.MustCompile(`(?:above|over|exceeds?|crosses? above|>=?)\s*(\d+)`)
	stopLossRe   = regexp.MustCompile(`(?:stop[\s-]?loss|\bsl\b)\D{0,10}?(\d+(?:\.\d+)?)\s*%`)
	takeProfitRe = regexp.MustCompile(`(?:take[\s-]?profit|\btp\b)\D{0,10}?(\d+(?:\.\d+)?)\s*%`)
	bollWindowRe = regexp.MustCompile(`(\d+)[\s-]*(?:day|period|bar)?\s*(?:bollinger|bands?)`)
	bollStdDevRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:std|standard deviation|sigma)`)
)

// Parse extracts a strategy spec from a free-text description.
func Parse(text string) types.StrategySpec {
	lower := strings.ToLower(text)

	kind := types.KindUnknown

	for _, rule := range categoryRules {
		if rule.pattern.MatchString(lower) {
			kind = rule.kind

			break
		}
	}

	spec := types.DefaultSpec(kind)

	// The dual-sided RSI template trades faster levels than the plain
	// oversold dip buyer.
	if kind == types.KindRSIOverbought {
		spec.RSIPeriod = 7
		spec.Oversold = 20
		spec.OverboughtExit = 45
	}

	switch kind {
	case types.KindMACrossover, types.KindTrendFollowing:
		parseMAWindows(lower, &spec)
	case types.KindRSIOversold, types.KindRSIOverbought:
		parseRSILevels(lower, &spec)
	case types.KindBollingerBands:
		parseBollinger(lower, &spec)
	}

	if m := stopLossRe.FindStringSubmatch(lower); m != nil {
		if pct, err := strconv.ParseFloat(m[1], 64); err == nil && pct > 0 {
			spec.StopLoss = optional.Some(pct / 100)
		}
	}

	if m := takeProfitRe.FindStringSubmatch(lower); m != nil {
		if pct, err := strconv.ParseFloat(m[1], 64); err == nil && pct > 0 {
			spec.TakeProfit = optional.Some(pct / 100)
		}
	}

	return spec
}

func parseMAWindows(text string, spec *types.StrategySpec) {
	matches := maWindowRe.FindAllStringSubmatch(text, -1)

	windows := make([]int, 0, len(matches))

	for _, m := range matches {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			windows = append(windows, n)
		}
	}

	switch {
	case len(windows) >= 2:
		fast, slow := windows[0], windows[1]
		if fast > slow {
			fast, slow = slow, fast
		}

		if fast < slow {
			spec.FastWindow = fast
			spec.SlowWindow = slow
		}
	case len(windows) == 1:
		spec.SlowWindow = windows[0]
		if spec.FastWindow >= spec.SlowWindow {
			spec.FastWindow = max(2, spec.SlowWindow/2)
		}
	}
}

func parseRSILevels(text string, spec *types.StrategySpec) {
	if m := rsiPeriodRe.FindStringSubmatch(text); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}

			if n, err := strconv.Atoi(g); err == nil && n > 1 {
				spec.RSIPeriod = n

				break
			}
		}
	}

	if m := oversoldRe.FindStringSubmatch(text); m != nil {
		if level, err := strconv.ParseFloat(m[1], 64); err == nil && level > 0 && level < 100 {
			spec.Oversold = level
		}
	}

	if m := overboughtRe.FindStringSubmatch(text); m != nil {
		if level, err := strconv.ParseFloat(m[1], 64); err == nil && level > 0 && level <= 100 {
			if spec.Kind == types.KindRSIOverbought {
				spec.ShortLevel = level
			} else {
				spec.OverboughtExit = level
			}
		}
	}
}

func parseBollinger(text string, spec *types.StrategySpec) {
	if m := bollWindowRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 1 {
			spec.BollingerWindow = n
		}
	}

	if m := bollStdDevRe.FindStringSubmatch(text); m != nil {
		if sd, err := strconv.ParseFloat(m[1], 64); err == nil && sd > 0 {
			spec.BollingerStdDev = sd
		}
	}
}
