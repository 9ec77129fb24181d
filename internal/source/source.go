// Package source abstracts where backtest report files come from: a
// local directory or a set of HTTP URLs downloaded ahead of a run.
package source

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jjeg1979/gbx-analyzer/internal/config"
)

// Source lists the report files to analyze, materialized as local paths.
type Source interface {
	// Fetch returns local paths of the report files, downloading them
	// first when the source is remote.
	Fetch(ctx context.Context) ([]string, error)

	// Name returns the name of the source
	Name() string
}

// New creates a Source from configuration.
func New(cfg *config.Config, logger *logrus.Logger) (Source, error) {
	if logger == nil {
		logger = logrus.New()
	}

	switch cfg.Reports.Source.Name {
	case "", "local":
		return NewLocalSource(cfg.Reports.Dir), nil

	case "http":
		if len(cfg.Reports.Source.URLs) == 0 {
			return nil, fmt.Errorf("http report source requires at least one URL")
		}
		client := NewRateLimitedClient(ClientConfig{
			Timeout:           cfg.SourceTimeout(),
			MaxRetries:        cfg.Reports.Source.MaxRetries,
			RateLimit:         cfg.Reports.Source.RateLimit,
			CircuitBreakerMax: cfg.Reports.Source.CircuitBreakerMax,
		}, logger)
		return NewHTTPSource(client, cfg.Reports.Source.URLs, cfg.Reports.Dir, cfg.Reports.Source.AuthToken, logger), nil

	default:
		return nil, fmt.Errorf("unknown report source: %s", cfg.Reports.Source.Name)
	}
}
