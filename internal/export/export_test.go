package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

func sampleBatch() *models.BatchResult {
	return &models.BatchResult{
		RunID: uuid.New(),
		Results: []models.StrategyResult{
			{
				ID:           uuid.New(),
				File:         "reports/alpha_IS.htm",
				Group:        "IS",
				StrategyName: "alpha_IS",
				TradeCount:   4,
				Passed:       true,
				Metrics: analysis.MetricSet{
					analysis.MetricTotalTrades:  4,
					analysis.MetricNetProfit:    10,
					analysis.MetricProfitFactor: 1.5,
					analysis.MetricWinRate:      0.5,
				},
			},
			{
				ID:           uuid.New(),
				File:         "reports/idle_OS.htm",
				Group:        "OS",
				StrategyName: "idle_OS",
				Passed:       false,
				Failures:     []string{"total_trades >= 1"},
				Metrics: analysis.MetricSet{
					analysis.MetricTotalTrades:  0,
					analysis.MetricProfitFactor: math.NaN(),
				},
			},
			{
				ID:          uuid.New(),
				File:        "reports/broken.htm",
				Group:       "ISOS",
				ParseFailed: true,
				Error:       "truncated statement",
			},
		},
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	out := GenerateConsoleReport(sampleBatch())

	assert.Contains(t, out, "Strategy Filter Report")
	assert.Contains(t, out, "alpha_IS")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL total_trades >= 1")
	assert.Contains(t, out, "n/a", "NaN metrics must render as n/a")
	assert.Contains(t, out, "reports/broken.htm: truncated statement")
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, WriteCSV(sampleBatch(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header plus two parsed strategies; rejected files are skipped")
	assert.True(t, strings.HasPrefix(lines[0], "strategy,group,file,passed,failures"))
	assert.Contains(t, lines[1], "alpha_IS")
	assert.Contains(t, lines[2], "idle_OS")
}

func TestWriteCSVRequiresPath(t *testing.T) {
	require.Error(t, WriteCSV(sampleBatch(), ""))
}

func TestParquetRoundTrip(t *testing.T) {
	batch := sampleBatch()
	path := filepath.Join(t.TempDir(), "out", "results.parquet")
	require.NoError(t, WriteParquet(batch, path))

	rows, err := ReadParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, batch.RunID.String(), rows[0].RunID)
	assert.Equal(t, "alpha_IS", rows[0].Strategy)
	assert.True(t, rows[0].Passed)
	assert.InDelta(t, 1.5, rows[0].ProfitFactor, 1e-9)

	assert.Equal(t, "idle_OS", rows[1].Strategy)
	assert.True(t, math.IsNaN(rows[1].ProfitFactor), "NaN sentinel must survive the round trip")
}

func TestFormatMetric(t *testing.T) {
	assert.Equal(t, "n/a", formatMetric(math.NaN()))
	assert.Equal(t, "inf", formatMetric(math.Inf(1)))
	assert.Equal(t, "4", formatMetric(4))
	assert.Equal(t, "1.5000", formatMetric(1.5))
}
