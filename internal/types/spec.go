package types

import "github.com/moznion/go-optional"

// StrategyKind identifies one of the closed set of rule templates the text
// parser can produce. The trade simulator switches exhaustively over this set.
type StrategyKind string

const (
	KindMACrossover    StrategyKind = "ma_crossover"
	KindRSIOversold    StrategyKind = "rsi_oversold"
	KindRSIOverbought  StrategyKind = "rsi_overbought"
	KindBollingerBands StrategyKind = "bollinger_bands"
	KindTrendFollowing StrategyKind = "trend_following"
	KindUnknown        StrategyKind = "unknown"
)

// StrategySpec is the machine-readable form of a free-text strategy
// description. Only the parameters relevant to Kind are meaningful; the rest
// keep their defaults.
type StrategySpec struct {
	Kind StrategyKind `json:"kind" yaml:"kind"`

	// Moving-average crossover parameters.
	FastWindow int `json:"fast_window" yaml:"fast_window"`
	SlowWindow int `json:"slow_window" yaml:"slow_window"`

	// RSI parameters. Oversold/OverboughtExit drive the long side,
	// ShortLevel/ShortCover the short side of a dual-sided RSI strategy.
	RSIPeriod      int     `json:"rsi_period" yaml:"rsi_period"`
	Oversold       float64 `json:"oversold" yaml:"oversold"`
	OverboughtExit float64 `json:"overbought_exit" yaml:"overbought_exit"`
	ShortLevel     float64 `json:"short_level" yaml:"short_level"`
	ShortCover     float64 `json:"short_cover" yaml:"short_cover"`

	// Bollinger band parameters.
	BollingerWindow int     `json:"bollinger_window" yaml:"bollinger_window"`
	BollingerStdDev float64 `json:"bollinger_std_dev" yaml:"bollinger_std_dev"`

	// Optional risk controls expressed as fractions of the entry price,
	// e.g. 0.10 for a 10% stop.
	StopLoss   optional.Option[float64] `json:"stop_loss,omitempty" yaml:"-"`
	TakeProfit optional.Option[float64] `json:"take_profit,omitempty" yaml:"-"`
}

// DefaultSpec returns a spec with every parameter at its default value and
// the given kind.
func DefaultSpec(kind StrategyKind) StrategySpec {
	return StrategySpec{
		Kind:            kind,
		FastWindow:      10,
		SlowWindow:      20,
		RSIPeriod:       14,
		Oversold:        30,
		OverboughtExit:  50,
		ShortLevel:      65,
		ShortCover:      35,
		BollingerWindow: 20,
		BollingerStdDev: 2.0,
	}
}
