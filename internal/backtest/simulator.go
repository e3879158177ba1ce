// Package backtest runs strategy specs against historical bars and measures
// the outcome.
package backtest

import (
	"math"

	"github.com/januswing/strategy-miner/internal/indicator"
	"github.com/januswing/strategy-miner/internal/types"
)

type positionState int

const (
	positionFlat positionState = iota
	positionLong
	positionShort
)

// Simulate replays a strategy spec over the indicator frame and returns the
// resulting trades. The simulator holds at most one position at a time,
// skips bars whose required indicator values are still undefined, and force
// closes any open position at the final bar, so every returned trade is
// closed.
func Simulate(frame *indicator.Frame, spec types.StrategySpec) []types.Trade {
	sim := &simulator{
		frame: frame,
		spec:  spec,
	}

	return sim.run()
}

type simulator struct {
	frame *indicator.Frame
	spec  types.StrategySpec

	state   positionState
	current types.Trade
	trades  []types.Trade
}

func (s *simulator) run() []types.Trade {
	for i := 0; i < s.frame.Len(); i++ {
		bar := s.frame.Bar(i)
		if math.IsNaN(bar.Close) {
			continue
		}

		if s.state != positionFlat && s.checkRiskExits(bar) {
			continue
		}

		switch s.spec.Kind {
		case types.KindMACrossover, types.KindTrendFollowing, types.KindUnknown:
			s.stepMACrossover(i, bar)
		case types.KindRSIOversold:
			s.stepRSIOversold(i, bar)
		case types.KindRSIOverbought:
			s.stepRSIDualSided(i, bar)
		case types.KindBollingerBands:
			s.stepBollinger(i, bar)
		}
	}

	// An open position at the end of the series is closed at the last
	// close so its outcome still counts.
	if s.state != positionFlat && s.frame.Len() > 0 {
		last := s.frame.Bar(s.frame.Len() - 1)
		s.closePosition(last.Close, last)
	}

	return s.trades
}

func (s *simulator) stepMACrossover(i int, bar types.PriceBar) {
	if !s.frame.Defined(i, indicator.ColumnFastMA, indicator.ColumnSlowMA) {
		return
	}

	fast := s.frame.Value(i, indicator.ColumnFastMA)
	slow := s.frame.Value(i, indicator.ColumnSlowMA)

	if i == 0 || !s.frame.Defined(i-1, indicator.ColumnFastMA, indicator.ColumnSlowMA) {
		// The first bar with both averages defined seeds the position the
		// way a position-based replay would: already-crossed means long.
		if s.state == positionFlat && fast > slow {
			s.openPosition(types.SideLong, bar)
		}

		return
	}

	prevFast := s.frame.Value(i-1, indicator.ColumnFastMA)
	prevSlow := s.frame.Value(i-1, indicator.ColumnSlowMA)

	switch s.state {
	case positionFlat:
		// Strict cross: the fast average must move from at-or-below to
		// strictly above. Touching equality does not trigger.
		if prevFast <= prevSlow && fast > slow {
			s.openPosition(types.SideLong, bar)
		}
	case positionLong:
		if prevFast >= prevSlow && fast < slow {
			s.closePosition(bar.Close, bar)
		}
	case positionShort:
	}
}

func (s *simulator) stepRSIOversold(i int, bar types.PriceBar) {
	if !s.frame.Defined(i, indicator.ColumnRSI) {
		return
	}

	rsi := s.frame.Value(i, indicator.ColumnRSI)

	switch s.state {
	case positionFlat:
		if rsi < s.spec.Oversold {
			s.openPosition(types.SideLong, bar)
		}
	case positionLong:
		if rsi > s.spec.OverboughtExit {
			s.closePosition(bar.Close, bar)
		}
	case positionShort:
	}
}

func (s *simulator) stepRSIDualSided(i int, bar types.PriceBar) {
	if !s.frame.Defined(i, indicator.ColumnRSI) {
		return
	}

	rsi := s.frame.Value(i, indicator.ColumnRSI)

	switch s.state {
	case positionFlat:
		if rsi < s.spec.Oversold {
			s.openPosition(types.SideLong, bar)
		} else if rsi > s.spec.ShortLevel {
			s.openPosition(types.SideShort, bar)
		}
	case positionLong:
		if rsi > s.spec.OverboughtExit {
			s.closePosition(bar.Close, bar)
		}
	case positionShort:
		if rsi < s.spec.ShortCover {
			s.closePosition(bar.Close, bar)
		}
	}
}

func (s *simulator) stepBollinger(i int, bar types.PriceBar) {
	if !s.frame.Defined(i, indicator.ColumnBollUpper, indicator.ColumnBollMiddle) {
		return
	}

	upper := s.frame.Value(i, indicator.ColumnBollUpper)
	middle := s.frame.Value(i, indicator.ColumnBollMiddle)

	switch s.state {
	case positionFlat:
		if bar.Close > upper {
			s.openPosition(types.SideLong, bar)
		}
	case positionLong:
		if bar.Close < middle {
			s.closePosition(bar.Close, bar)
		}
	case positionShort:
	}
}

// checkRiskExits applies the optional stop-loss and take-profit fractions
// against the bar close. Returns true when the position was closed, in which
// case the bar generates no further signals.
func (s *simulator) checkRiskExits(bar types.PriceBar) bool {
	entry := s.current.EntryPrice

	if sl, err := s.spec.StopLoss.Take(); err == nil {
		if s.state == positionLong && bar.Close <= entry*(1-sl) ||
			s.state == positionShort && bar.Close >= entry*(1+sl) {
			s.closePosition(bar.Close, bar)
			return true
		}
	}

	if tp, err := s.spec.TakeProfit.Take(); err == nil {
		if s.state == positionLong && bar.Close >= entry*(1+tp) ||
			s.state == positionShort && bar.Close <= entry*(1-tp) {
			s.closePosition(bar.Close, bar)
			return true
		}
	}

	return false
}

func (s *simulator) openPosition(side types.Side, bar types.PriceBar) {
	s.current = types.Trade{
		Side:       side,
		EntryPrice: bar.Close,
		EntryTime:  bar.Time,
	}

	if side == types.SideLong {
		s.state = positionLong
	} else {
		s.state = positionShort
	}
}

func (s *simulator) closePosition(price float64, bar types.PriceBar) {
	s.current.ExitPrice = price
	s.current.ExitTime = bar.Time
	s.current.Closed = true
	s.trades = append(s.trades, s.current)
	s.current = types.Trade{}
	s.state = positionFlat
}
