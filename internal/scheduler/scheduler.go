// Package scheduler runs the periodic maintenance jobs: the hold expiry
// sweep and session cleanup.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is one run of a periodic job
type JobFunc func(ctx context.Context) error

type Scheduler struct {
	cron  *cron.Cron
	lease Lease
	ttl   time.Duration
	log   *zap.Logger
}

// New builds a scheduler; ttl bounds both the lease and a single run.
func New(lease Lease, ttl time.Duration, log *zap.Logger) *Scheduler {
	if ttl <= 0 {
		ttl = 4 * time.Minute
	}
	log = log.With(zap.String("component", "scheduler"))

	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		lease: lease,
		ttl:   ttl,
		log:   log,
	}
}

// Add registers job under a cron spec such as "@every 5m"
func (s *Scheduler) Add(spec, name string, job JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.Run(context.Background(), name, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}

	s.log.Info("Job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before running jobs finished")
	}
}

// Run executes job once under the lease. It reports whether the job ran.
func (s *Scheduler) Run(ctx context.Context, name string, job JobFunc) bool {
	token, ok, err := s.lease.Acquire(ctx, name, s.ttl)
	if err != nil {
		s.log.Error("Failed to acquire lease", zap.String("job", name), zap.Error(err))
		return false
	}
	if !ok {
		s.log.Debug("Job skipped, lease taken", zap.String("job", name))
		return false
	}
	defer func() {
		if err := s.lease.Release(context.Background(), name, token); err != nil {
			s.log.Warn("Failed to release lease", zap.String("job", name), zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.ttl)
	defer cancel()

	start := time.Now()
	if err := job(runCtx); err != nil {
		s.log.Error("Job failed",
			zap.String("job", name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		return true
	}

	s.log.Debug("Job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	return true
}

type cronLogger struct {
	log *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
