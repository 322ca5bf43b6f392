package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rentwear-backend/internal/config"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentals  repository.RentalRepository
	returns  repository.ReturnRepository
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Notification service.NotificationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(rentals repository.RentalRepository, returns repository.ReturnRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		rentals:  rentals,
		returns:  returns,
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) (int, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	count, err := jobFunc(context.Background())
	if err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName, "notified", count, "duration", time.Since(start))
	return nil
}

// jobs maps job names to their implementations for manual execution
func (jr *JobRunner) jobs() map[string]func() error {
	return map[string]func() error{
		"send-pickup-reminders":     jr.SendPickupReminders,
		"send-return-due-reminders": jr.SendReturnDueReminders,
	}
}

// JobNames lists the jobs RunJob accepts
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, len(jr.jobs()))
	for name := range jr.jobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs one job by name (for manual execution)
func (jr *JobRunner) RunJob(name string) error {
	job, ok := jr.jobs()[name]
	if !ok {
		return fmt.Errorf("unknown job %q, expected one of %v", name, jr.JobNames())
	}
	return job()
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() error {
	var firstErr error
	for _, name := range jr.JobNames() {
		if err := jr.RunJob(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
