package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

func fixtureReport() *models.StrategyReport {
	day := func(d int) time.Time {
		return time.Date(2023, 1, d, 10, 0, 0, 0, time.UTC)
	}
	trade := func(d int, dir models.TradeDirection, profit string) models.TradeRecord {
		return models.TradeRecord{
			OpenTime:  day(d),
			CloseTime: day(d).Add(4 * time.Hour),
			Direction: dir,
			Symbol:    "eurusd",
			Volume:    decimal.RequireFromString("0.10"),
			Profit:    decimal.RequireFromString(profit),
		}
	}

	rep := &models.StrategyReport{
		StrategyName:   "alpha_IS",
		InitialBalance: decimal.RequireFromString("10000"),
		PeriodStart:    day(2),
		PeriodEnd:      day(5).Add(4 * time.Hour),
		Trades: []models.TradeRecord{
			trade(2, models.TradeBuy, "10.00"),
			trade(3, models.TradeSell, "20.00"),
			trade(4, models.TradeBuy, "-5.00"),
			trade(5, models.TradeSell, "-15.00"),
		},
	}
	rep.FinalBalance = rep.InitialBalance.Add(rep.NetProfit())
	return rep
}

func TestComputeKnownValues(t *testing.T) {
	m := Compute(fixtureReport())

	assert.Equal(t, 4.0, m[MetricTotalTrades])
	assert.Equal(t, 2.0, m[MetricLongTrades])
	assert.Equal(t, 2.0, m[MetricShortTrades])
	assert.InDelta(t, 10.0, m[MetricNetProfit], 1e-9)
	assert.InDelta(t, 30.0, m[MetricGrossProfit], 1e-9)
	assert.InDelta(t, 20.0, m[MetricGrossLoss], 1e-9)
	assert.InDelta(t, 1.5, m[MetricProfitFactor], 1e-9)
	assert.InDelta(t, 0.5, m[MetricWinRate], 1e-9)
	assert.InDelta(t, 2.5, m[MetricExpectancy], 1e-9)
	assert.InDelta(t, 15.0, m[MetricAverageWin], 1e-9)
	assert.InDelta(t, -10.0, m[MetricAverageLoss], 1e-9)
	assert.InDelta(t, 1.5, m[MetricPayoffRatio], 1e-9)
	assert.InDelta(t, 20.0, m[MetricLargestWin], 1e-9)
	assert.InDelta(t, -15.0, m[MetricLargestLoss], 1e-9)
	assert.InDelta(t, 10010.0, m[MetricFinalBalance], 1e-9)

	// Balance walks 10000 -> 10010 -> 10030 -> 10025 -> 10010.
	assert.InDelta(t, 20.0, m[MetricMaxDrawdown], 1e-9)
	assert.InDelta(t, 20.0/10030.0, m[MetricMaxDrawdownPct], 1e-9)
}

func TestComputeIsIdempotent(t *testing.T) {
	rep := fixtureReport()

	first := Compute(rep)
	second := Compute(rep)

	require.Equal(t, len(first), len(second))
	for name, v := range first {
		assert.Equal(t, v, second[name], name)
	}
}

func TestComputeZeroTradesSentinels(t *testing.T) {
	rep := &models.StrategyReport{
		InitialBalance: decimal.RequireFromString("10000"),
		FinalBalance:   decimal.RequireFromString("10000"),
	}

	m := Compute(rep)

	assert.Equal(t, 0.0, m[MetricTotalTrades])
	assert.Equal(t, 0.0, m[MetricNetProfit])
	assert.Equal(t, 0.0, m[MetricMaxDrawdown])
	assert.True(t, math.IsNaN(m[MetricProfitFactor]))
	assert.True(t, math.IsNaN(m[MetricWinRate]))
	assert.True(t, math.IsNaN(m[MetricExpectancy]))
	assert.True(t, math.IsNaN(m[MetricPayoffRatio]))
	assert.True(t, math.IsNaN(m[MetricTradesPerDay]))
}

func TestProfitFactorAllWinners(t *testing.T) {
	rep := fixtureReport()
	rep.Trades = rep.Trades[:2]

	m := Compute(rep)
	assert.True(t, math.IsInf(m[MetricProfitFactor], 1))
}

func TestKnownMetricNames(t *testing.T) {
	assert.True(t, Known(MetricProfitFactor))
	assert.False(t, Known("sharpe_of_sharpes"))
	assert.Contains(t, Names(), MetricWinRate)
}
