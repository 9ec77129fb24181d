package models

import (
	"time"

	"github.com/google/uuid"
)

// StrategyResult is the outcome of running one report through the
// metric evaluator and the threshold filter.
type StrategyResult struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	File         string             `db:"file" json:"file"`
	Group        string             `db:"file_group" json:"group"`
	StrategyName string             `db:"strategy_name" json:"strategy_name"`
	TradeCount   int                `db:"trade_count" json:"trade_count"`
	Metrics      map[string]float64 `db:"-" json:"metrics"`
	Passed       bool               `db:"passed" json:"passed"`
	Failures     []string           `db:"-" json:"failures,omitempty"`
	ParseFailed  bool               `db:"parse_failed" json:"parse_failed"`
	Error        string             `db:"error" json:"error,omitempty"`
}

// BatchResult aggregates one full run over a set of report files.
type BatchResult struct {
	RunID     uuid.UUID        `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
	Results   []StrategyResult `json:"results"`
}

// Parsed returns the number of reports decoded successfully.
func (b *BatchResult) Parsed() int {
	parsed := 0
	for _, r := range b.Results {
		if !r.ParseFailed {
			parsed++
		}
	}
	return parsed
}

// Failed returns the number of reports rejected by the decoder.
func (b *BatchResult) Failed() int {
	return len(b.Results) - b.Parsed()
}

// PassedCount returns the number of strategies that satisfied every rule.
func (b *BatchResult) PassedCount() int {
	passed := 0
	for _, r := range b.Results {
		if !r.ParseFailed && r.Passed {
			passed++
		}
	}
	return passed
}

// Shortlist returns only the results that satisfied every rule.
func (b *BatchResult) Shortlist() []StrategyResult {
	shortlist := make([]StrategyResult, 0, len(b.Results))
	for _, r := range b.Results {
		if !r.ParseFailed && r.Passed {
			shortlist = append(shortlist, r)
		}
	}
	return shortlist
}
