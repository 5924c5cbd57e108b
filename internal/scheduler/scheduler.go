package scheduler

import (
	"time"

	"bora-alugar-backend/internal/jobs"
	"bora-alugar-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Runner is what the scheduler triggers. *jobs.JobRunner implements it.
type Runner interface {
	Run(name string) error
}

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
}

// NewScheduler registers each job under its cron spec. Specs use seconds
// precision and are evaluated in UTC. A job with an empty spec is not scheduled.
func NewScheduler(runner Runner, specs map[string]string) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	s := &Scheduler{cron: c, runner: runner}

	for _, name := range jobs.Names() {
		spec := specs[name]
		if spec == "" {
			logger.Warn("Job has no schedule", "job", name)
			continue
		}
		job := name
		if _, err := s.cron.AddFunc(spec, func() { _ = s.runner.Run(job) }); err != nil {
			return nil, err
		}
		logger.Debug("Registered job", "job", name, "spec", spec)
	}
	logger.Info("All cron jobs registered successfully", "count", len(s.cron.Entries()))
	return s, nil
}

// Specs reads the cron specs from the runner's configuration
func Specs(r *jobs.JobRunner) map[string]string {
	cfg := r.Config()
	return map[string]string{
		jobs.RecomputeTrustScores:  cfg.RecomputeTrustScores,
		jobs.SendReviewReminders:   cfg.SendReviewReminders,
		jobs.SendPendingReminders:  cfg.SendPendingReminders,
		jobs.LapseSubscriptions:    cfg.LapseSubscriptions,
		jobs.CleanupPendingUploads: cfg.CleanupPendingUploads,
	}
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// Next reports when each scheduled job runs next
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Next)
	}
	return out
}

func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
