// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// AuditLogger provides a dedicated audit trail of batch runs and their
// verdicts.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBatchStarted records the start of a batch filter run.
func (al *AuditLogger) LogBatchStarted(runID string, sourceName string, reports int, rules []string) {
	al.WithFields(logrus.Fields{
		"run_id":  runID,
		"source":  sourceName,
		"reports": reports,
		"rules":   rules,
	}).Info("Batch run started")
}

// LogBatchCompleted records the outcome of a batch filter run.
func (al *AuditLogger) LogBatchCompleted(batch *models.BatchResult) {
	al.WithFields(logrus.Fields{
		"run_id":      batch.RunID.String(),
		"started_at":  batch.StartedAt.Unix(),
		"duration_ms": batch.Duration.Milliseconds(),
		"reports":     len(batch.Results),
		"parsed":      batch.Parsed(),
		"rejected":    batch.Failed(),
		"passed":      batch.PassedCount(),
	}).Info("Batch run completed")
}

// LogStrategyVerdict records the filter verdict for one strategy.
func (al *AuditLogger) LogStrategyVerdict(res models.StrategyResult) {
	al.WithFields(logrus.Fields{
		"strategy":    res.StrategyName,
		"file_group":  res.Group,
		"trade_count": res.TradeCount,
		"passed":      res.Passed,
		"failures":    res.Failures,
	}).Info("Strategy verdict recorded")
}

// LogReportRejected records a report the decoder refused to parse.
func (al *AuditLogger) LogReportRejected(file string, reason string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"file":      file,
		"reason":    reason,
		"timestamp": timestamp.Unix(),
	}).Warn("Report rejected")
}

// LogExportWritten records a result export.
func (al *AuditLogger) LogExportWritten(runID string, format string, path string, rows int) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"format": format,
		"path":   path,
		"rows":   rows,
	}).Info("Export written")
}
