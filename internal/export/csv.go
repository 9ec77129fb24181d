package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// WriteCSV exports every evaluated strategy with its full metric set to
// a CSV file for spreadsheets.
func WriteCSV(batch *models.BatchResult, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV export: %w", err)
	}
	defer f.Close()

	names := analysis.Names()
	header := append([]string{"strategy", "group", "file", "passed", "failures"}, names...)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, res := range batch.Results {
		if res.ParseFailed {
			continue
		}
		row := []string{
			res.StrategyName,
			res.Group,
			res.File,
			fmt.Sprintf("%t", res.Passed),
			strings.Join(res.Failures, "; "),
		}
		for _, name := range names {
			row = append(row, formatMetric(res.Metrics[name]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
