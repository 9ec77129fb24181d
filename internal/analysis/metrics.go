// Package analysis computes performance metrics from decoded strategy
// reports. Every metric is a pure function of the trade sequence.
package analysis

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// MetricSet maps metric names to computed values. Undefined ratios are
// NaN so that threshold comparisons on them fail closed.
type MetricSet map[string]float64

// Metric names understood by the evaluator and the threshold filter.
const (
	MetricTotalTrades    = "total_trades"
	MetricLongTrades     = "long_trades"
	MetricShortTrades    = "short_trades"
	MetricNetProfit      = "total_net_profit"
	MetricGrossProfit    = "gross_profit"
	MetricGrossLoss      = "gross_loss"
	MetricProfitFactor   = "profit_factor"
	MetricMaxDrawdown    = "max_drawdown"
	MetricMaxDrawdownPct = "max_drawdown_pct"
	MetricWinRate        = "win_rate"
	MetricExpectancy     = "expectancy"
	MetricAverageWin     = "average_win"
	MetricAverageLoss    = "average_loss"
	MetricPayoffRatio    = "payoff_ratio"
	MetricLargestWin     = "largest_win"
	MetricLargestLoss    = "largest_loss"
	MetricTradesPerDay   = "trades_per_day"
	MetricFinalBalance   = "final_balance"
)

var knownMetrics = map[string]bool{
	MetricTotalTrades:    true,
	MetricLongTrades:     true,
	MetricShortTrades:    true,
	MetricNetProfit:      true,
	MetricGrossProfit:    true,
	MetricGrossLoss:      true,
	MetricProfitFactor:   true,
	MetricMaxDrawdown:    true,
	MetricMaxDrawdownPct: true,
	MetricWinRate:        true,
	MetricExpectancy:     true,
	MetricAverageWin:     true,
	MetricAverageLoss:    true,
	MetricPayoffRatio:    true,
	MetricLargestWin:     true,
	MetricLargestLoss:    true,
	MetricTradesPerDay:   true,
	MetricFinalBalance:   true,
}

// Known reports whether name is a metric the evaluator computes.
func Known(name string) bool {
	return knownMetrics[name]
}

// Names returns all metric names in stable order.
func Names() []string {
	names := make([]string, 0, len(knownMetrics))
	for name := range knownMetrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute derives the full metric set from a report. Calling it twice on
// the same report yields identical results.
func Compute(rep *models.StrategyReport) MetricSet {
	stats := tradeStats(rep.Trades)

	m := MetricSet{
		MetricTotalTrades:  float64(len(rep.Trades)),
		MetricLongTrades:   float64(stats.longs),
		MetricShortTrades:  float64(stats.shorts),
		MetricNetProfit:    stats.grossProfit.Sub(stats.grossLoss).InexactFloat64(),
		MetricGrossProfit:  stats.grossProfit.InexactFloat64(),
		MetricGrossLoss:    stats.grossLoss.InexactFloat64(),
		MetricLargestWin:   stats.largestWin.InexactFloat64(),
		MetricLargestLoss:  stats.largestLoss.InexactFloat64(),
		MetricFinalBalance: rep.FinalBalance.InexactFloat64(),
	}

	m[MetricProfitFactor] = profitFactor(stats)
	m[MetricWinRate] = winRate(stats)
	m[MetricExpectancy] = expectancy(stats)
	m[MetricAverageWin] = averageWin(stats)
	m[MetricAverageLoss] = averageLoss(stats)
	m[MetricPayoffRatio] = payoffRatio(stats)
	m[MetricTradesPerDay] = tradesPerDay(rep)

	dd, ddPct := maxDrawdown(rep)
	m[MetricMaxDrawdown] = dd
	m[MetricMaxDrawdownPct] = ddPct

	return m
}

type stats struct {
	wins, losses  int
	longs, shorts int
	grossProfit   decimal.Decimal
	grossLoss     decimal.Decimal
	largestWin    decimal.Decimal
	largestLoss   decimal.Decimal
}

func tradeStats(trades []models.TradeRecord) stats {
	s := stats{
		grossProfit: decimal.Zero,
		grossLoss:   decimal.Zero,
		largestWin:  decimal.Zero,
		largestLoss: decimal.Zero,
	}
	for _, t := range trades {
		switch t.Direction {
		case models.TradeBuy:
			s.longs++
		case models.TradeSell:
			s.shorts++
		}

		if t.IsWin() {
			s.wins++
			s.grossProfit = s.grossProfit.Add(t.Profit)
			if t.Profit.GreaterThan(s.largestWin) {
				s.largestWin = t.Profit
			}
		} else if t.IsLoss() {
			s.losses++
			s.grossLoss = s.grossLoss.Add(t.Profit.Abs())
			if t.Profit.LessThan(s.largestLoss) {
				s.largestLoss = t.Profit
			}
		}
	}
	return s
}

// profitFactor is gross profit over gross loss. With no losses it is +Inf
// for a profitable history and NaN when there is nothing to divide.
func profitFactor(s stats) float64 {
	if s.grossLoss.IsZero() {
		if s.grossProfit.IsPositive() {
			return math.Inf(1)
		}
		return math.NaN()
	}
	return s.grossProfit.Div(s.grossLoss).InexactFloat64()
}

func winRate(s stats) float64 {
	total := s.wins + s.losses
	if total == 0 {
		return math.NaN()
	}
	return float64(s.wins) / float64(total)
}

func expectancy(s stats) float64 {
	total := s.wins + s.losses
	if total == 0 {
		return math.NaN()
	}
	net := s.grossProfit.Sub(s.grossLoss)
	return net.InexactFloat64() / float64(total)
}

func averageWin(s stats) float64 {
	if s.wins == 0 {
		return math.NaN()
	}
	return s.grossProfit.InexactFloat64() / float64(s.wins)
}

func averageLoss(s stats) float64 {
	if s.losses == 0 {
		return math.NaN()
	}
	return -s.grossLoss.InexactFloat64() / float64(s.losses)
}

func payoffRatio(s stats) float64 {
	avgWin := averageWin(s)
	avgLoss := averageLoss(s)
	if math.IsNaN(avgWin) || math.IsNaN(avgLoss) || avgLoss == 0 {
		return math.NaN()
	}
	return avgWin / math.Abs(avgLoss)
}

func tradesPerDay(rep *models.StrategyReport) float64 {
	days := rep.PeriodDays()
	if days == 0 {
		return math.NaN()
	}
	return float64(len(rep.Trades)) / float64(days)
}

// maxDrawdown walks the balance curve trade by trade and returns the
// deepest peak-to-trough decline, absolute and relative to the peak.
func maxDrawdown(rep *models.StrategyReport) (float64, float64) {
	balance := rep.InitialBalance
	peak := balance
	maxDD := decimal.Zero
	maxDDPct := 0.0

	for _, t := range rep.Trades {
		balance = balance.Add(t.Profit)
		if balance.GreaterThan(peak) {
			peak = balance
			continue
		}
		dd := peak.Sub(balance)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
		if peak.IsPositive() {
			pct := dd.Div(peak).InexactFloat64()
			if pct > maxDDPct {
				maxDDPct = pct
			}
		}
	}
	return maxDD.InexactFloat64(), maxDDPct
}
