package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// StrategyRow is the Parquet schema for exported strategy results. NaN
// and Inf metric sentinels survive the round trip as float64 values.
type StrategyRow struct {
	RunID          string  `parquet:"run_id"`
	Strategy       string  `parquet:"strategy"`
	Group          string  `parquet:"file_group"`
	File           string  `parquet:"file"`
	Passed         bool    `parquet:"passed"`
	TotalTrades    float64 `parquet:"total_trades"`
	NetProfit      float64 `parquet:"total_net_profit"`
	GrossProfit    float64 `parquet:"gross_profit"`
	GrossLoss      float64 `parquet:"gross_loss"`
	ProfitFactor   float64 `parquet:"profit_factor"`
	MaxDrawdown    float64 `parquet:"max_drawdown"`
	MaxDrawdownPct float64 `parquet:"max_drawdown_pct"`
	WinRate        float64 `parquet:"win_rate"`
	Expectancy     float64 `parquet:"expectancy"`
	PayoffRatio    float64 `parquet:"payoff_ratio"`
	TradesPerDay   float64 `parquet:"trades_per_day"`
	FinalBalance   float64 `parquet:"final_balance"`
}

// WriteParquet exports evaluated strategies to a Parquet file.
func WriteParquet(batch *models.BatchResult, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rows := make([]StrategyRow, 0, len(batch.Results))
	for _, res := range batch.Results {
		if res.ParseFailed {
			continue
		}
		rows = append(rows, StrategyRow{
			RunID:          batch.RunID.String(),
			Strategy:       res.StrategyName,
			Group:          res.Group,
			File:           res.File,
			Passed:         res.Passed,
			TotalTrades:    res.Metrics[analysis.MetricTotalTrades],
			NetProfit:      res.Metrics[analysis.MetricNetProfit],
			GrossProfit:    res.Metrics[analysis.MetricGrossProfit],
			GrossLoss:      res.Metrics[analysis.MetricGrossLoss],
			ProfitFactor:   res.Metrics[analysis.MetricProfitFactor],
			MaxDrawdown:    res.Metrics[analysis.MetricMaxDrawdown],
			MaxDrawdownPct: res.Metrics[analysis.MetricMaxDrawdownPct],
			WinRate:        res.Metrics[analysis.MetricWinRate],
			Expectancy:     res.Metrics[analysis.MetricExpectancy],
			PayoffRatio:    res.Metrics[analysis.MetricPayoffRatio],
			TradesPerDay:   res.Metrics[analysis.MetricTradesPerDay],
			FinalBalance:   res.Metrics[analysis.MetricFinalBalance],
		})
	}

	return parquet.WriteFile(outputPath, rows)
}

// ReadParquet loads a previously exported Parquet file.
func ReadParquet(path string) ([]StrategyRow, error) {
	return parquet.ReadFile[StrategyRow](path)
}
