package scheduler

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

func noopBatch(ctx context.Context) (*models.BatchResult, error) {
	return &models.BatchResult{}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestScheduleBatchRejectsBadExpression(t *testing.T) {
	s := NewScheduler(noopBatch, nil, quietLogger())
	require.Error(t, s.ScheduleBatch("not a cron expression"))
}

func TestStartWithoutJobs(t *testing.T) {
	s := NewScheduler(noopBatch, nil, quietLogger())
	require.Error(t, s.Start())
}

func TestStartStopLifecycle(t *testing.T) {
	s := NewScheduler(noopBatch, nil, quietLogger())
	require.NoError(t, s.ScheduleBatch("@hourly"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())

	require.Error(t, s.Start(), "double start must fail")
	require.Error(t, s.ScheduleBatch("@daily"), "scheduling while running must fail")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(), "stop is idempotent")
}
