// Package marketdata fetches price series and live quotes for the
// validation pipeline.
package marketdata

import (
	"context"

	"github.com/januswing/strategy-miner/internal/types"
)

// Provider fetches historical bars for a symbol.
type Provider interface {
	// GetBars returns up to limit bars of the given interval, oldest first.
	GetBars(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.PriceBar, error)
}

// QuoteProvider fetches a live snapshot of the best bid/ask and last trade
// price. The real-time monitor polls it at a fixed interval.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (types.Quote, error)
}
