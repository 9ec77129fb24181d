// Package export renders batch results to the console and to CSV and
// Parquet files for downstream analysis.
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// consoleMetrics is the subset of metrics shown in the terminal table.
// The full set goes to CSV and Parquet exports.
var consoleMetrics = []string{
	analysis.MetricTotalTrades,
	analysis.MetricNetProfit,
	analysis.MetricProfitFactor,
	analysis.MetricWinRate,
	analysis.MetricMaxDrawdownPct,
	analysis.MetricExpectancy,
}

// GenerateConsoleReport formats a batch result for terminal output.
func GenerateConsoleReport(batch *models.BatchResult) string {
	var builder strings.Builder
	builder.WriteString("Strategy Filter Report\n")
	builder.WriteString("======================\n")
	builder.WriteString(fmt.Sprintf("Run ID: %s\n", batch.RunID))
	builder.WriteString(fmt.Sprintf("Reports: %d (parsed %d, rejected %d)\n",
		len(batch.Results), batch.Parsed(), batch.Failed()))
	builder.WriteString(fmt.Sprintf("Passed: %d\n", batch.PassedCount()))
	builder.WriteString(fmt.Sprintf("Duration: %s\n\n", batch.Duration))

	writeGroupTables(&builder, batch)

	if batch.Failed() > 0 {
		builder.WriteString("Rejected reports:\n")
		for _, res := range batch.Results {
			if res.ParseFailed {
				builder.WriteString(fmt.Sprintf("  %s: %s\n", res.File, res.Error))
			}
		}
	}

	return builder.String()
}

func writeGroupTables(builder *strings.Builder, batch *models.BatchResult) {
	byGroup := make(map[string][]models.StrategyResult)
	for _, res := range batch.Results {
		if res.ParseFailed {
			continue
		}
		byGroup[res.Group] = append(byGroup[res.Group], res)
	}

	groups := make([]string, 0, len(byGroup))
	for name := range byGroup {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	for _, group := range groups {
		builder.WriteString(fmt.Sprintf("Group %s\n", group))

		w := tabwriter.NewWriter(builder, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "STRATEGY\t%s\tVERDICT\n", strings.ToUpper(strings.Join(consoleMetrics, "\t")))
		for _, res := range byGroup[group] {
			cells := make([]string, 0, len(consoleMetrics))
			for _, name := range consoleMetrics {
				cells = append(cells, formatMetric(res.Metrics[name]))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", res.StrategyName, strings.Join(cells, "\t"), verdict(res))
		}
		w.Flush()
		builder.WriteString("\n")
	}
}

func verdict(res models.StrategyResult) string {
	if res.Passed {
		return "PASS"
	}
	return "FAIL " + strings.Join(res.Failures, "; ")
}

// formatMetric renders one metric value. Sentinels keep their spelling so
// an undefined ratio is visibly n/a rather than a misleading number.
func formatMetric(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e9:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}
