package types

import "time"

// Side is the direction of a simulated position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Trade is one round trip produced by the trade simulator. ExitPrice and
// ExitTime are meaningful only once Closed is true; the simulator closes
// every trade before returning.
type Trade struct {
	Side       Side      `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`
	ExitPrice  float64   `json:"exit_price"`
	ExitTime   time.Time `json:"exit_time"`
	Closed     bool      `json:"closed"`
}

// Return is the fractional profit of a closed trade before fees. Long trades
// gain when price rises, short trades when it falls.
func (t *Trade) Return() float64 {
	if !t.Closed || t.EntryPrice == 0 {
		return 0
	}
	if t.Side == SideShort {
		return (t.EntryPrice - t.ExitPrice) / t.EntryPrice
	}
	return (t.ExitPrice - t.EntryPrice) / t.EntryPrice
}
