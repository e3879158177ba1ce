// Package notifier announces passed candidates to the outside world.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// Notifier is called when a candidate passes validation. The orchestrator
// treats failures as log-only; delivery is best effort.
type Notifier interface {
	NotifyPassed(ctx context.Context, candidate types.StrategyCandidate, metrics types.BacktestMetrics) error
}

// Noop discards notifications. It is the default when no webhook is
// configured.
type Noop struct{}

var _ Notifier = (*Noop)(nil)

func (Noop) NotifyPassed(context.Context, types.StrategyCandidate, types.BacktestMetrics) error {
	return nil
}

// Webhook POSTs a compact JSON card to a configured URL.
type Webhook struct {
	url    string
	client *http.Client
}

var _ Notifier = (*Webhook)(nil)

// NewWebhook creates a webhook notifier with a bounded request timeout.
func NewWebhook(url string) (*Webhook, error) {
	if url == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "webhook url is empty")
	}

	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type webhookCard struct {
	Title        string  `json:"title"`
	CandidateID  int64   `json:"candidate_id"`
	Source       string  `json:"source"`
	URL          string  `json:"url"`
	AnnualReturn string  `json:"annual_return"`
	MaxDrawdown  string  `json:"max_drawdown"`
	WinRate      string  `json:"win_rate"`
	TotalTrades  int     `json:"total_trades"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
}

func (w *Webhook) NotifyPassed(ctx context.Context, candidate types.StrategyCandidate, metrics types.BacktestMetrics) error {
	card := webhookCard{
		Title:        fmt.Sprintf("Strategy passed: %s", candidate.Title),
		CandidateID:  candidate.ID,
		Source:       candidate.Source,
		URL:          candidate.URL,
		AnnualReturn: fmt.Sprintf("%.2f%%", metrics.AnnualReturn*100),
		MaxDrawdown:  fmt.Sprintf("%.2f%%", metrics.MaxDrawdown*100),
		WinRate:      fmt.Sprintf("%.1f%%", metrics.WinRate*100),
		TotalTrades:  metrics.TotalTrades,
		SharpeRatio:  metrics.SharpeRatio,
	}

	body, err := json.Marshal(card)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, "failed to encode notification card", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to build notification request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to deliver notification", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Newf(errors.ErrCodeDataSourceUnavailable, "notification endpoint returned %s", resp.Status)
	}

	return nil
}
