// Package main provides the entry point for the one-shot report filter
// CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jjeg1979/gbx-analyzer/internal/config"
	"github.com/jjeg1979/gbx-analyzer/internal/export"
	"github.com/jjeg1979/gbx-analyzer/internal/logger"
	"github.com/jjeg1979/gbx-analyzer/internal/models"
	"github.com/jjeg1979/gbx-analyzer/internal/pipeline"
	"github.com/jjeg1979/gbx-analyzer/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		reportsDir = flag.String("reports", "", "Override reports directory")
		rules      = flag.String("rules", "", "Override threshold rules, comma separated")
		outputDir  = flag.String("output", "", "Override export output directory")
		csvExport  = flag.Bool("csv", false, "Force CSV export")
		store      = flag.Bool("store", false, "Persist results to PostgreSQL")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	applyOverrides(cfg, *reportsDir, *rules, *outputDir, *csvExport)

	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	audit := logger.NewAuditLogger(log)
	ctx := context.Background()

	runner, err := pipeline.NewRunner(cfg, nil, log)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	batch, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("Batch run failed: %v", err)
	}
	audit.LogBatchCompleted(batch)

	fmt.Print(export.GenerateConsoleReport(batch))
	writeExports(cfg, batch, audit, log)

	if *store || cfg.Storage.Enabled {
		persistResults(ctx, cfg, batch, log)
	}

	if batch.PassedCount() == 0 {
		os.Exit(1)
	}
}

func loadConfigWithSecrets(path string) *config.Config {
	bootstrap := logrus.New()

	cfg, err := config.Load(path)
	if err != nil {
		bootstrap.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			bootstrap.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			bootstrap.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		bootstrap.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func applyOverrides(cfg *config.Config, reportsDir, rules, outputDir string, csvExport bool) {
	if reportsDir != "" {
		cfg.Reports.Dir = reportsDir
	}
	if rules != "" {
		var parsed []string
		for _, expr := range strings.Split(rules, ",") {
			if expr = strings.TrimSpace(expr); expr != "" {
				parsed = append(parsed, expr)
			}
		}
		cfg.Filter.Rules = parsed
	}
	if outputDir != "" {
		cfg.Export.OutputDir = outputDir
	}
	if csvExport {
		cfg.Export.CSV = true
	}
}

func writeExports(cfg *config.Config, batch *models.BatchResult, audit *logger.AuditLogger, log *logrus.Logger) {
	if cfg.Export.OutputDir == "" {
		return
	}

	if cfg.Export.CSV {
		path := filepath.Join(cfg.Export.OutputDir, "results.csv")
		if err := export.WriteCSV(batch, path); err != nil {
			log.Fatalf("Failed to write CSV export: %v", err)
		}
		audit.LogExportWritten(batch.RunID.String(), "csv", path, batch.Parsed())
	}
	if cfg.Export.Parquet {
		path := filepath.Join(cfg.Export.OutputDir, "results.parquet")
		if err := export.WriteParquet(batch, path); err != nil {
			log.Fatalf("Failed to write Parquet export: %v", err)
		}
		audit.LogExportWritten(batch.RunID.String(), "parquet", path, batch.Parsed())
	}
}

func persistResults(ctx context.Context, cfg *config.Config, batch *models.BatchResult, log *logrus.Logger) {
	db, err := storage.NewDB(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to result sink: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize result schema: %v", err)
	}

	repo := storage.NewPostgresResultRepository(db)
	if err := repo.SaveBatch(ctx, batch); err != nil {
		log.Fatalf("Failed to persist batch results: %v", err)
	}

	log.WithField("run_id", batch.RunID).Info("Batch results persisted")
}
