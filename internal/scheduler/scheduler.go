// Package scheduler runs the batch filter on a cron schedule for watch
// mode.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jjeg1979/gbx-analyzer/internal/models"
)

// BatchFunc executes one batch filter run.
type BatchFunc func(ctx context.Context) (*models.BatchResult, error)

// Scheduler manages scheduled batch runs
type Scheduler struct {
	cron       *cron.Cron
	run        BatchFunc
	onResult   func(*models.BatchResult)
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	runTimeout time.Duration
}

// NewScheduler creates a new scheduler. The onResult callback receives
// every completed batch; a nil callback is fine.
func NewScheduler(run BatchFunc, onResult func(*models.BatchResult), logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		run:        run,
		onResult:   onResult,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
		runTimeout: 30 * time.Minute,
	}
}

// ScheduleBatch schedules batch runs on the given cron expression.
func (s *Scheduler) ScheduleBatch(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		s.logger.Info("Starting scheduled batch run")

		batch, err := s.run(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled batch run failed")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"run_id": batch.RunID,
			"passed": batch.PassedCount(),
			"failed": batch.Failed(),
		}).Info("Scheduled batch run completed")

		if s.onResult != nil {
			s.onResult(batch)
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled batch job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to
// finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled batch run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
