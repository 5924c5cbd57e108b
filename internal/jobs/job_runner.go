package jobs

import (
	"context"
	"fmt"
	"time"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/metrics"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/service"
)

// Job names, as used by the scheduler, the cronjob command and the metrics labels
const (
	RecomputeTrustScores  = "RecomputeTrustScores"
	SendReviewReminders   = "SendReviewReminders"
	SendPendingReminders  = "SendPendingReminders"
	LapseSubscriptions    = "LapseSubscriptions"
	CleanupPendingUploads = "CleanupPendingUploads"
)

// Notifier delivers one note. service.Notifier implements it.
type Notifier interface {
	Notify(ctx context.Context, note service.Note)
}

// JobRunner coordinates all scheduled jobs. Jobs only maintain derived data
// and send reminders; none of them moves a rental along its lifecycle.
type JobRunner struct {
	repos    *Repositories
	services *Services
	notifier Notifier
	config   config.SchedulerConfig
	timeout  time.Duration
	now      func() time.Time
}

// Repositories holds the read access jobs need to find their work
type Repositories struct {
	Users   repository.UserRepository
	Rentals repository.RentalRepository
	Reviews repository.ReviewRepository
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Review       service.ReviewService
	Subscription service.SubscriptionService
	Upload       service.UploadService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos *Repositories, services *Services, notifier Notifier, cfg config.SchedulerConfig) *JobRunner {
	return &JobRunner{
		repos:    repos,
		services: services,
		notifier: notifier,
		config:   cfg,
		timeout:  10 * time.Minute,
		now:      time.Now,
	}
}

// Config returns the cron schedule the runner was built with
func (jr *JobRunner) Config() config.SchedulerConfig {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery, logging and metrics
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		metrics.RecordJob(jobName, err == nil, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName, "elapsed", time.Since(start))
	return nil
}

// Run executes one job by name
func (jr *JobRunner) Run(name string) error {
	job, ok := jr.registry()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return jr.runWithRecovery(name, job)
}

// RunAll runs every job once, in a fixed order, and reports the first failure
func (jr *JobRunner) RunAll() error {
	var first error
	for _, name := range Names() {
		if err := jr.Run(name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Names lists the jobs in the order RunAll executes them
func Names() []string {
	return []string{LapseSubscriptions, RecomputeTrustScores, SendReviewReminders, SendPendingReminders, CleanupPendingUploads}
}

func (jr *JobRunner) registry() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		RecomputeTrustScores:  jr.recomputeTrustScores,
		SendReviewReminders:   jr.sendReviewReminders,
		SendPendingReminders:  jr.sendPendingReminders,
		LapseSubscriptions:    jr.lapseSubscriptions,
		CleanupPendingUploads: jr.cleanupPendingUploads,
	}
}
