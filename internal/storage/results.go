package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

const errScanStrategyResult = "failed to scan strategy result: %w"

// ResultRepository persists and retrieves batch results.
type ResultRepository interface {
	SaveBatch(ctx context.Context, batch *models.BatchResult) error
	GetShortlist(ctx context.Context, runID uuid.UUID) ([]models.StrategyResult, error)
	GetLatestRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// RunSummary is one row of the batch_runs table.
type RunSummary struct {
	ID        uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Reports   int
	Parsed    int
	Passed    int
}

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

// SaveBatch inserts the run header and every strategy result in one
// transaction, so a half-written run never lands in the table.
func (r *PostgresResultRepository) SaveBatch(ctx context.Context, batch *models.BatchResult) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO batch_runs (id, started_at, duration_ms, reports, parsed, passed)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, batch.RunID, batch.StartedAt, batch.Duration.Milliseconds(),
		len(batch.Results), batch.Parsed(), batch.PassedCount())
	if err != nil {
		return fmt.Errorf("failed to save batch run: %w", err)
	}

	for _, res := range batch.Results {
		metricsJSON, err := marshalMetrics(res.Metrics)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO strategy_results (
				id, run_id, file, file_group, strategy_name, trade_count,
				passed, failures, parse_failed, error, metrics
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, res.ID, batch.RunID, res.File, res.Group, res.StrategyName, res.TradeCount,
			res.Passed, strings.Join(res.Failures, "; "), res.ParseFailed, res.Error, metricsJSON)
		if err != nil {
			return fmt.Errorf("failed to save strategy result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetShortlist retrieves the passing strategies of one run.
func (r *PostgresResultRepository) GetShortlist(ctx context.Context, runID uuid.UUID) ([]models.StrategyResult, error) {
	query := `
		SELECT id, file, file_group, strategy_name, trade_count, passed, parse_failed, error, metrics
		FROM strategy_results
		WHERE run_id = $1 AND passed = TRUE AND parse_failed = FALSE
		ORDER BY strategy_name
	`
	rows, err := r.db.GetPool().Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shortlist: %w", err)
	}
	defer rows.Close()

	var results []models.StrategyResult
	for rows.Next() {
		var res models.StrategyResult
		var metricsJSON []byte
		if err := rows.Scan(
			&res.ID, &res.File, &res.Group, &res.StrategyName, &res.TradeCount,
			&res.Passed, &res.ParseFailed, &res.Error, &metricsJSON,
		); err != nil {
			return nil, fmt.Errorf(errScanStrategyResult, err)
		}
		if len(metricsJSON) > 0 {
			if err := json.Unmarshal(metricsJSON, &res.Metrics); err != nil {
				return nil, fmt.Errorf(errScanStrategyResult, err)
			}
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetLatestRuns retrieves the most recent batch runs.
func (r *PostgresResultRepository) GetLatestRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT id, started_at, duration_ms, reports, parsed, passed
		FROM batch_runs ORDER BY started_at DESC LIMIT $1
	`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.StartedAt, &durationMS, &run.Reports, &run.Parsed, &run.Passed); err != nil {
			return nil, fmt.Errorf("failed to scan batch run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// marshalMetrics encodes a metric set as JSON. NaN and Inf are not valid
// JSON numbers, so sentinel values become null.
func marshalMetrics(m map[string]float64) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]any, len(m))
	for name, value := range m {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			out[name] = nil
			continue
		}
		out[name] = value
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	return data, nil
}
