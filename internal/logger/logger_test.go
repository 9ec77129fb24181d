package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("not-a-level", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerProductionFormatter(t *testing.T) {
	log := NewLogger("info", "production")
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "production must log JSON")

	log = NewLogger("info", "development")
	_, ok = log.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "development must log text")
}

func TestAuditLoggerBatchCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	batch := &models.BatchResult{
		RunID:     uuid.New(),
		StartedAt: time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Results: []models.StrategyResult{
			{StrategyName: "alpha_IS", Passed: true},
			{File: "broken.htm", ParseFailed: true},
		},
	}
	auditLogger.LogBatchCompleted(batch)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, batch.RunID.String(), logEntry["run_id"])
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(1), logEntry["passed"])
	assert.Equal(t, float64(1), logEntry["rejected"])
}

func TestAuditLoggerStrategyVerdict(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogStrategyVerdict(models.StrategyResult{
		StrategyName: "alpha_IS",
		Group:        "IS",
		TradeCount:   4,
		Passed:       false,
		Failures:     []string{"profit_factor >= 1.5"},
	})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "alpha_IS", logEntry["strategy"])
	assert.Equal(t, false, logEntry["passed"])
}

func TestAuditLoggerReportRejected(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogReportRejected("reports/bad.htm", "truncated statement", time.Now())

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "reports/bad.htm", logEntry["file"])
	assert.Equal(t, "truncated statement", logEntry["reason"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogExportWritten(uuid.NewString(), "csv", "out/results.csv", 12)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}
