package indicator

import (
	"math"

	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// Column identifies one computed indicator series inside a Frame.
type Column string

const (
	ColumnFastMA     Column = "fast_ma"
	ColumnSlowMA     Column = "slow_ma"
	ColumnRSI        Column = "rsi"
	ColumnBollUpper  Column = "boll_upper"
	ColumnBollMiddle Column = "boll_middle"
	ColumnBollLower  Column = "boll_lower"
)

// Frame holds indicator series aligned 1:1 with the input bars. Values that
// cannot be computed yet (warm-up window) are carried as NaN and reported as
// undefined.
type Frame struct {
	bars    []types.PriceBar
	columns map[Column][]float64
}

// NewFrame creates an empty frame over the given bars.
func NewFrame(bars []types.PriceBar) *Frame {
	return &Frame{
		bars:    bars,
		columns: make(map[Column][]float64),
	}
}

// Len returns the number of bars in the frame.
func (f *Frame) Len() int {
	return len(f.bars)
}

// Bar returns the input bar at index i.
func (f *Frame) Bar(i int) types.PriceBar {
	return f.bars[i]
}

// SetColumn attaches a computed series to the frame. The series must be
// aligned with the bars.
func (f *Frame) SetColumn(col Column, values []float64) error {
	if len(values) != len(f.bars) {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"column %s has %d values for %d bars", col, len(values), len(f.bars))
	}

	f.columns[col] = values

	return nil
}

// Value returns the series value at index i, or NaN when the column is
// missing or the value is undefined.
func (f *Frame) Value(i int, col Column) float64 {
	series, ok := f.columns[col]
	if !ok || i < 0 || i >= len(series) {
		return math.NaN()
	}

	return series[i]
}

// Defined reports whether every listed column has a usable value at index i.
func (f *Frame) Defined(i int, cols ...Column) bool {
	for _, col := range cols {
		if math.IsNaN(f.Value(i, col)) {
			return false
		}
	}

	return true
}

// HasColumn reports whether the frame carries the given series.
func (f *Frame) HasColumn(col Column) bool {
	_, ok := f.columns[col]
	return ok
}

func nanSeries(n int) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = math.NaN()
	}

	return series
}
