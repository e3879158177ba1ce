package marketdata

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// BinanceProvider serves bars and quotes from the Binance spot REST API.
// Public market data endpoints need no credentials.
type BinanceProvider struct {
	client *binance.Client
}

var (
	_ Provider      = (*BinanceProvider)(nil)
	_ QuoteProvider = (*BinanceProvider)(nil)
)

// NewBinanceProvider creates a provider against the public Binance API.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
	}
}

// GetBars fetches klines and converts them to price bars, oldest first.
func (p *BinanceProvider) GetBars(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.PriceBar, error) {
	if !interval.IsValid() {
		return nil, errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", interval)
	}

	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "bar limit must be positive, got %d", limit)
	}

	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(string(interval)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to fetch %s klines for %s", interval, symbol)
	}

	if len(klines) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "no klines returned for %s", symbol)
	}

	bars := make([]types.PriceBar, 0, len(klines))

	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		bars = append(bars, types.PriceBar{
			Symbol: symbol,
			Time:   time.UnixMilli(k.OpenTime),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return bars, nil
}

// GetQuote fetches the current best bid/ask and last trade price.
func (p *BinanceProvider) GetQuote(ctx context.Context, symbol string) (types.Quote, error) {
	books, err := p.client.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.Quote{}, errors.Wrapf(errors.ErrCodeMonitorFetchFailed, err, "failed to fetch book ticker for %s", symbol)
	}

	if len(books) == 0 {
		return types.Quote{}, errors.Newf(errors.ErrCodeDataNotFound, "no book ticker for %s", symbol)
	}

	prices, err := p.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.Quote{}, errors.Wrapf(errors.ErrCodeMonitorFetchFailed, err, "failed to fetch last price for %s", symbol)
	}

	if len(prices) == 0 {
		return types.Quote{}, errors.Newf(errors.ErrCodeDataNotFound, "no last price for %s", symbol)
	}

	bid, _ := strconv.ParseFloat(books[0].BidPrice, 64)
	ask, _ := strconv.ParseFloat(books[0].AskPrice, 64)
	last, _ := strconv.ParseFloat(prices[0].Price, 64)

	return types.Quote{
		Symbol: symbol,
		Bid:    bid,
		Ask:    ask,
		Last:   last,
		Time:   time.Now().UTC(),
	}, nil
}
