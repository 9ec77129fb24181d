// Package main provides the analyzer CLI with batch, watch and
// inspection subcommands.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
	"github.com/jjeg1979/gbx-analyzer/internal/config"
	"github.com/jjeg1979/gbx-analyzer/internal/export"
	"github.com/jjeg1979/gbx-analyzer/internal/filter"
	"github.com/jjeg1979/gbx-analyzer/internal/gather"
	"github.com/jjeg1979/gbx-analyzer/internal/health"
	"github.com/jjeg1979/gbx-analyzer/internal/logger"
	"github.com/jjeg1979/gbx-analyzer/internal/metrics"
	"github.com/jjeg1979/gbx-analyzer/internal/models"
	"github.com/jjeg1979/gbx-analyzer/internal/pipeline"
	"github.com/jjeg1979/gbx-analyzer/internal/report"
	"github.com/jjeg1979/gbx-analyzer/internal/scheduler"
	"github.com/jjeg1979/gbx-analyzer/internal/storage"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(runCmd, watchCmd, parseCmd, groupCmd, metricsCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Filter backtest statements by metric thresholds",
	Long: `Parses Genbox backtest statements, computes performance metrics
and shortlists the strategies that satisfy every configured threshold rule.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "metrics" {
			return nil
		}
		return setup()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the batch filter once",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := pipeline.NewRunner(cfg, nil, appLogger)
		if err != nil {
			return err
		}

		batch, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Print(export.GenerateConsoleReport(batch))
		return exportAndPersist(cmd.Context(), batch)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the batch filter on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Watch.Schedule == "" {
			return fmt.Errorf("watch.schedule is not configured")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		metrics.InitRegistry()

		runner, err := pipeline.NewRunner(cfg, nil, appLogger)
		if err != nil {
			return err
		}

		var pinger health.StoragePinger
		var repo storage.ResultRepository
		if cfg.Storage.Enabled {
			db, err := storage.NewDB(ctx, &cfg.Storage)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			pinger = db
			repo = storage.NewPostgresResultRepository(db)
		}

		audit := logger.NewAuditLogger(appLogger)
		var monitor *health.Server

		onResult := func(batch *models.BatchResult) {
			audit.LogBatchCompleted(batch)
			if monitor != nil {
				monitor.RecordRun(batch.StartedAt.Add(batch.Duration))
			}
			if err := exportAndPersistWith(ctx, batch, repo); err != nil {
				appLogger.WithError(err).Error("Failed to publish batch results")
			}
		}

		sched := scheduler.NewScheduler(runner.Run, onResult, appLogger)
		if err := sched.ScheduleBatch(cfg.Watch.Schedule); err != nil {
			return err
		}

		if cfg.Metrics.Enabled {
			monitor = health.NewServer(health.Config{
				ServiceName: cfg.App.Name,
				Version:     Version,
				Port:        cfg.Metrics.Port,
				MetricsPath: cfg.Metrics.Path,
				Logger:      appLogger,
				Storage:     pinger,
				NextRun:     sched.GetNextRun,
			})
			if err := monitor.Start(ctx); err != nil {
				return err
			}
			monitor.SetReady(true)
		}

		if err := sched.Start(); err != nil {
			return err
		}

		appLogger.WithField("schedule", cfg.Watch.Schedule).Info("Watching for reports")
		<-ctx.Done()

		return sched.Stop()
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <report.htm>",
	Short: "Decode one statement and print its metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decoder := report.NewDecoder(appLogger)
		rep, err := decoder.DecodeFile(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d trades, %s to %s\n",
			rep.StrategyName, rep.TradeCount(),
			rep.PeriodStart.Format("2006.01.02"), rep.PeriodEnd.Format("2006.01.02"))

		metricSet := analysis.Compute(rep)
		for _, name := range analysis.Names() {
			fmt.Printf("  %-20s %g\n", name, metricSet[name])
		}
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Show how report files split into groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		grouping, err := gather.Scan(cfg.Reports.Dir, cfg.Reports.Groups)
		if err != nil {
			return err
		}

		for _, name := range cfg.Reports.Groups {
			fmt.Printf("%s (%d):\n", name, len(grouping[name]))
			for _, path := range grouping[name] {
				fmt.Printf("  %s\n", filepath.Base(path))
			}
		}
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the metrics usable in threshold rules",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Available metrics:")
		for _, name := range analysis.Names() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Printf("\nOperators: %s %s %s %s %s %s\n",
			filter.OpGE, filter.OpGT, filter.OpLE, filter.OpLT, filter.OpEQ, filter.OpNE)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("analyzer %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

func exportAndPersist(ctx context.Context, batch *models.BatchResult) error {
	var repo storage.ResultRepository
	if cfg.Storage.Enabled {
		db, err := storage.NewDB(ctx, &cfg.Storage)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		repo = storage.NewPostgresResultRepository(db)
	}
	return exportAndPersistWith(ctx, batch, repo)
}

func exportAndPersistWith(ctx context.Context, batch *models.BatchResult, repo storage.ResultRepository) error {
	if cfg.Export.OutputDir != "" {
		if cfg.Export.CSV {
			path := filepath.Join(cfg.Export.OutputDir, "results.csv")
			if err := export.WriteCSV(batch, path); err != nil {
				return fmt.Errorf("failed to write CSV export: %w", err)
			}
		}
		if cfg.Export.Parquet {
			path := filepath.Join(cfg.Export.OutputDir, "results.parquet")
			if err := export.WriteParquet(batch, path); err != nil {
				return fmt.Errorf("failed to write Parquet export: %w", err)
			}
		}
	}

	if repo != nil {
		if err := repo.SaveBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to persist batch results: %w", err)
		}
	}
	return nil
}
