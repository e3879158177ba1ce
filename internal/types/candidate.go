package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// CandidateStatus is the lifecycle state of a harvested strategy candidate.
type CandidateStatus string

const (
	StatusPending  CandidateStatus = "pending"
	StatusPassed   CandidateStatus = "passed"
	StatusRejected CandidateStatus = "rejected"
	StatusInvalid  CandidateStatus = "invalid"
)

// StrategyCandidate is a strategy description harvested from an external
// source, together with its validation state.
type StrategyCandidate struct {
	ID             int64           `json:"id"`
	Source         string          `json:"source"`
	Author         string          `json:"author"`
	URL            string          `json:"url"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	ExtractedLogic string          `json:"extracted_logic"`
	Keywords       []string        `json:"keywords"`
	Score          int             `json:"score"`
	NumComments    int             `json:"num_comments"`
	DiscoveredAt   time.Time       `json:"discovered_at"`
	Status         CandidateStatus `json:"status"`

	ValidatedAt    optional.Option[time.Time]       `json:"validated_at,omitempty"`
	BacktestResult optional.Option[BacktestMetrics] `json:"backtest_result,omitempty"`
}

// Description returns the text the parser and classifier should work on:
// the extracted logic when present, otherwise title and content.
func (c *StrategyCandidate) Description() string {
	if c.ExtractedLogic != "" {
		return c.ExtractedLogic
	}
	if c.Content != "" {
		return c.Title + " " + c.Content
	}
	return c.Title
}
