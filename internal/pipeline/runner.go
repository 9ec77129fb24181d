// Package pipeline runs the full batch: fetch reports, group them,
// decode each statement, compute metrics and apply the threshold rules.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
	"github.com/jjeg1979/gbx-analyzer/internal/config"
	"github.com/jjeg1979/gbx-analyzer/internal/filter"
	"github.com/jjeg1979/gbx-analyzer/internal/gather"
	"github.com/jjeg1979/gbx-analyzer/internal/metrics"
	"github.com/jjeg1979/gbx-analyzer/internal/models"
	"github.com/jjeg1979/gbx-analyzer/internal/report"
	"github.com/jjeg1979/gbx-analyzer/internal/source"
)

// Runner executes batch filter runs. It is safe to reuse across runs;
// parsed reports are memoized between runs until the file changes or the
// cache entry expires.
type Runner struct {
	cfg     *config.Config
	rules   filter.RuleSet
	decoder *report.Decoder
	source  source.Source
	cache   *gocache.Cache
	logger  *logrus.Logger
}

// NewRunner builds a runner from the configuration. Rule expressions are
// parsed up front so a bad rule is a configuration error, not a runtime
// surprise halfway through a batch.
func NewRunner(cfg *config.Config, src source.Source, logger *logrus.Logger) (*Runner, error) {
	if logger == nil {
		logger = logrus.New()
	}

	rules, err := filter.ParseRuleSet(cfg.Filter.Rules)
	if err != nil {
		return nil, err
	}

	if src == nil {
		src, err = source.New(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	ttl := cfg.CacheTTL()
	return &Runner{
		cfg:     cfg,
		rules:   rules,
		decoder: report.NewDecoder(logger),
		source:  src,
		cache:   gocache.New(ttl, 2*ttl),
		logger:  logger,
	}, nil
}

// Rules returns the parsed rule set applied to every strategy.
func (r *Runner) Rules() filter.RuleSet {
	return r.rules
}

// Run executes one full batch over the configured report source.
func (r *Runner) Run(ctx context.Context) (*models.BatchResult, error) {
	started := time.Now()
	batch := &models.BatchResult{
		RunID:     uuid.New(),
		StartedAt: started,
	}

	paths, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports from %s source: %w", r.source.Name(), err)
	}
	if len(paths) == 0 {
		return nil, models.ErrNoReports
	}

	grouping := gather.Group(paths, r.cfg.Reports.Groups)
	r.logger.WithFields(logrus.Fields{
		"run_id":  batch.RunID,
		"source":  r.source.Name(),
		"reports": grouping.Total(),
	}).Info("Starting batch run")

	groups := make([]string, 0, len(grouping))
	for name := range grouping {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	for _, group := range groups {
		for _, path := range grouping[group] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			batch.Results = append(batch.Results, r.evaluateFile(path, group))
		}
	}

	batch.Duration = time.Since(started)
	r.recordBatchMetrics(batch)

	r.logger.WithFields(logrus.Fields{
		"run_id":   batch.RunID,
		"parsed":   batch.Parsed(),
		"failed":   batch.Failed(),
		"passed":   batch.PassedCount(),
		"duration": batch.Duration,
	}).Info("Batch run complete")

	return batch, nil
}

// evaluateFile runs one report through the decoder, the metric evaluator
// and the rule set. A parse failure is recorded on the result and never
// aborts the batch.
func (r *Runner) evaluateFile(path string, group string) models.StrategyResult {
	result := models.StrategyResult{
		ID:    uuid.New(),
		File:  path,
		Group: group,
	}

	rep, err := r.decodeCached(path)
	if err != nil {
		metrics.ParseFailuresTotal.Inc()
		r.logger.WithError(err).WithField("file", path).Warn("Rejected report")
		result.ParseFailed = true
		result.Error = err.Error()
		return result
	}

	result.StrategyName = rep.StrategyName
	result.TradeCount = rep.TradeCount()
	result.Metrics = analysis.Compute(rep)

	verdict := r.rules.Evaluate(result.Metrics)
	result.Passed = verdict.Passed
	result.Failures = verdict.FailureStrings()

	if result.Passed {
		metrics.StrategiesPassedTotal.WithLabelValues(group).Inc()
	} else {
		metrics.StrategiesFailedTotal.WithLabelValues(group).Inc()
	}

	r.logger.WithFields(logrus.Fields{
		"strategy": result.StrategyName,
		"group":    group,
		"trades":   result.TradeCount,
		"passed":   result.Passed,
	}).Debug("Evaluated strategy")

	return result
}

// decodeCached decodes a report, memoizing the parsed statement. The key
// includes size and mtime so an overwritten file is re-parsed.
func (r *Runner) decodeCached(path string) (*models.StrategyReport, error) {
	key, err := cacheKey(path)
	if err != nil {
		return nil, err
	}

	if cached, ok := r.cache.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		return cached.(*models.StrategyReport), nil
	}

	start := time.Now()
	rep, err := r.decoder.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	metrics.ReportParseDuration.Observe(time.Since(start).Seconds())
	metrics.ReportsParsedTotal.Inc()

	r.cache.Set(key, rep, gocache.DefaultExpiration)
	return rep, nil
}

func (r *Runner) recordBatchMetrics(batch *models.BatchResult) {
	metrics.BatchRunsTotal.Inc()
	metrics.BatchDuration.Observe(batch.Duration.Seconds())
	metrics.LastBatchStrategies.Set(float64(len(batch.Results)))

	if parsed := batch.Parsed(); parsed > 0 {
		metrics.LastBatchPassRate.Set(float64(batch.PassedCount()) / float64(parsed))
	} else {
		metrics.LastBatchPassRate.Set(0)
	}
}

func cacheKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat report: %w", err)
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
}
