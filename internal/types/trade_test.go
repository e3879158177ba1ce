package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTradeReturn(t *testing.T) {
	entry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exit := entry.Add(24 * time.Hour)

	tests := []struct {
		name     string
		trade    Trade
		expected float64
	}{
		{
			name: "long winner",
			trade: Trade{
				Side:       SideLong,
				EntryPrice: 100,
				EntryTime:  entry,
				ExitPrice:  110,
				ExitTime:   exit,
				Closed:     true,
			},
			expected: 0.10,
		},
		{
			name: "long loser",
			trade: Trade{
				Side:       SideLong,
				EntryPrice: 100,
				EntryTime:  entry,
				ExitPrice:  95,
				ExitTime:   exit,
				Closed:     true,
			},
			expected: -0.05,
		},
		{
			name: "short winner",
			trade: Trade{
				Side:       SideShort,
				EntryPrice: 100,
				EntryTime:  entry,
				ExitPrice:  90,
				ExitTime:   exit,
				Closed:     true,
			},
			expected: 0.10,
		},
		{
			name: "short loser",
			trade: Trade{
				Side:       SideShort,
				EntryPrice: 100,
				EntryTime:  entry,
				ExitPrice:  105,
				ExitTime:   exit,
				Closed:     true,
			},
			expected: -0.05,
		},
		{
			name: "open trade returns zero",
			trade: Trade{
				Side:       SideLong,
				EntryPrice: 100,
				EntryTime:  entry,
			},
			expected: 0,
		},
		{
			name: "zero entry price returns zero",
			trade: Trade{
				Side:      SideLong,
				EntryTime: entry,
				ExitTime:  exit,
				Closed:    true,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.trade.Return(), 1e-12)
		})
	}
}
