package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StrategyReport is the decoded contents of one backtest report file:
// the ordered trade history plus the summary fields derived from it.
// The caller owns the report after decoding; nothing mutates it afterwards.
type StrategyReport struct {
	StrategyName   string          `json:"strategy_name"`
	SourceFile     string          `json:"source_file"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	FinalBalance   decimal.Decimal `json:"final_balance"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	Trades         []TradeRecord   `json:"trades"`
}

// TradeCount returns the number of closed trades in the report.
func (r *StrategyReport) TradeCount() int {
	return len(r.Trades)
}

// PeriodDays returns the length of the test period in whole days,
// never less than one for a non-empty trade history.
func (r *StrategyReport) PeriodDays() int {
	if r.PeriodStart.IsZero() || r.PeriodEnd.IsZero() {
		return 0
	}
	days := int(r.PeriodEnd.Sub(r.PeriodStart).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// NetProfit returns the sum of all trade profits.
func (r *StrategyReport) NetProfit() decimal.Decimal {
	net := decimal.Zero
	for _, trade := range r.Trades {
		net = net.Add(trade.Profit)
	}
	return net
}
