package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeDirection is the order side recorded in a report.
type TradeDirection string

const (
	TradeBuy  TradeDirection = "buy"
	TradeSell TradeDirection = "sell"
)

// TradeRecord represents one closed trade taken from a backtest report.
// Records are immutable once decoded.
type TradeRecord struct {
	Ticket     int             `json:"ticket"`
	OpenTime   time.Time       `json:"open_time"`
	Direction  TradeDirection  `json:"direction"`
	Volume     decimal.Decimal `json:"volume"`
	Symbol     string          `json:"symbol"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	StopLoss   decimal.Decimal `json:"stop_loss"`
	TakeProfit decimal.Decimal `json:"take_profit"`
	CloseTime  time.Time       `json:"close_time"`
	ClosePrice decimal.Decimal `json:"close_price"`
	Profit     decimal.Decimal `json:"profit"`
}

// IsWin reports whether the trade closed with a positive profit.
func (t *TradeRecord) IsWin() bool {
	return t.Profit.IsPositive()
}

// IsLoss reports whether the trade closed with a negative profit.
func (t *TradeRecord) IsLoss() bool {
	return t.Profit.IsNegative()
}

// HoldingTime returns how long the position was open.
func (t *TradeRecord) HoldingTime() time.Duration {
	return t.CloseTime.Sub(t.OpenTime)
}
