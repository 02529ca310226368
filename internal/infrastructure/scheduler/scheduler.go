// Package scheduler runs the monthly stock period rollover on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/config"
	"go.uber.org/zap"
)

// JobStatus represents the status of a rollover run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Run is one execution of the rollover job, including its retries
type Run struct {
	ID          uuid.UUID    `json:"id"`
	Period      stock.Period `json:"period"`
	Status      JobStatus    `json:"status"`
	Attempts    int          `json:"attempts"`
	Seeded      int          `json:"seeded"`
	Error       string       `json:"error,omitempty"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func newRun(period stock.Period) *Run {
	return &Run{ID: uuid.New(), Period: period, Status: JobStatusPending}
}

func (r *Run) start(now time.Time) {
	r.Attempts++
	r.Status = JobStatusRunning
	r.Error = ""
	if r.StartedAt == nil {
		r.StartedAt = &now
	}
}

func (r *Run) complete(now time.Time, seeded int) {
	r.Status = JobStatusSuccess
	r.Seeded = seeded
	r.CompletedAt = &now
}

func (r *Run) fail(now time.Time, err error) {
	r.Status = JobStatusFailed
	r.Error = err.Error()
	r.CompletedAt = &now
}

// PeriodSeeder creates the missing stock status records of a period
type PeriodSeeder interface {
	SeedPeriod(ctx context.Context, period stock.Period) (int, error)
}

// RegistryStarter is the part of the stock registry the rollover restarts
type RegistryStarter interface {
	Start(ctx context.Context, period stock.Period) error
	Period() stock.Period
	IsRunning() bool
}

// RolloverObserver receives the outcome of each run
type RolloverObserver interface {
	ObserveRollover(seeded int, err error)
}

// RolloverScheduler seeds the current period for every material and moves
// the stock registry onto it. It runs on the configured cron expression,
// interpreted in the ledger's time zone.
type RolloverScheduler struct {
	config   config.SchedulerConfig
	location *time.Location
	seeder   PeriodSeeder
	registry RegistryStarter
	observer RolloverObserver
	logger   *zap.Logger
	now      func() time.Time

	cron    *cron.Cron
	entryID cron.EntryID
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool

	runMu   sync.Mutex // one run at a time, scheduled or manual
	lastRun *Run
}

// NewRolloverScheduler creates a scheduler. registry may be nil.
func NewRolloverScheduler(
	cfg config.SchedulerConfig,
	location *time.Location,
	seeder PeriodSeeder,
	registry RegistryStarter,
	logger *zap.Logger,
) *RolloverScheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverScheduler{
		config:   cfg,
		location: location,
		seeder:   seeder,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// SetObserver attaches a metrics observer
func (s *RolloverScheduler) SetObserver(o RolloverObserver) {
	s.observer = o
}

// Start registers the cron entry. With RunOnStartup the current period is
// rolled over before Start returns; a failure there is logged, not returned.
func (s *RolloverScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Rollover scheduler disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.config.RolloverCron); err != nil {
		return fmt.Errorf("%w: rollover_cron %q: %v", ErrInvalidConfig, s.config.RolloverCron, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cronLog := newCronLogger(s.logger)
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	id, err := c.AddFunc(s.config.RolloverCron, func() {
		_, _ = s.RunNow(runCtx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if s.config.RunOnStartup {
		if _, err := s.RunNow(runCtx); err != nil {
			s.logger.Error("Startup rollover failed", zap.Error(err))
		}
	}

	c.Start()
	s.cron = c
	s.entryID = id
	s.cancel = cancel
	s.running = true

	s.logger.Info("Rollover scheduler started",
		zap.String("cron", s.config.RolloverCron),
		zap.String("location", s.location.String()),
		zap.Time("next_run", c.Entry(id).Next),
	)
	return nil
}

// Stop removes the schedule and waits for a run in progress, up to ctx's deadline
func (s *RolloverScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	c, cancel := s.cron, s.cancel
	s.mu.Unlock()

	done := c.Stop()
	select {
	case <-done.Done():
		cancel()
		s.logger.Info("Rollover scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		cancel()
		s.logger.Warn("Rollover scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns true between Start and Stop
func (s *RolloverScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns when the rollover fires next
func (s *RolloverScheduler) NextRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}, ErrSchedulerNotRunning
	}
	return s.cron.Entry(s.entryID).Next, nil
}

// LastRun returns a copy of the most recent run
func (s *RolloverScheduler) LastRun() (Run, bool) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.lastRun == nil {
		return Run{}, false
	}
	return *s.lastRun, true
}

// RunNow rolls the ledger over to the current period, retrying failed
// attempts up to RetryAttempts times.
func (s *RolloverScheduler) RunNow(ctx context.Context) (Run, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	period := stock.PeriodOf(s.now().In(s.location))
	run := newRun(period)
	s.lastRun = run

	for {
		run.start(s.now())
		s.logger.Info("Processing rollover",
			zap.String("run_id", run.ID.String()),
			zap.String("period", period.String()),
			zap.Int("attempt", run.Attempts),
		)

		seeded, err := s.execute(ctx, period)
		if err == nil {
			run.complete(s.now(), seeded)
			s.observe(seeded, nil)
			s.logger.Info("Rollover completed",
				zap.String("run_id", run.ID.String()),
				zap.String("period", period.String()),
				zap.Int("seeded", seeded),
			)
			return *run, nil
		}

		run.fail(s.now(), err)
		s.logger.Error("Rollover failed",
			zap.String("run_id", run.ID.String()),
			zap.String("period", period.String()),
			zap.Int("attempt", run.Attempts),
			zap.Error(err),
		)
		if run.Attempts > s.config.RetryAttempts {
			s.observe(0, err)
			return *run, err
		}

		select {
		case <-time.After(s.config.RetryDelay):
		case <-ctx.Done():
			s.observe(0, ctx.Err())
			return *run, ctx.Err()
		}
	}
}

func (s *RolloverScheduler) execute(ctx context.Context, period stock.Period) (int, error) {
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	seeded, err := s.seeder.SeedPeriod(ctx, period)
	if err != nil {
		return 0, err
	}
	if s.registry != nil && (!s.registry.IsRunning() || s.registry.Period() != period) {
		if err := s.registry.Start(ctx, period); err != nil {
			return seeded, fmt.Errorf("restart stock registry: %w", err)
		}
	}
	return seeded, nil
}

func (s *RolloverScheduler) observe(seeded int, err error) {
	if s.observer != nil {
		s.observer.ObserveRollover(seeded, err)
	}
}
