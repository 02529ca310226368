package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSeeder struct {
	mu      sync.Mutex
	periods []stock.Period
	errs    []error // consumed one per call
	seeded  int
}

func (f *fakeSeeder) SeedPeriod(_ context.Context, period stock.Period) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods = append(f.periods, period)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	return f.seeded, nil
}

func (f *fakeSeeder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.periods)
}

type fakeRegistry struct {
	period  stock.Period
	running bool
	starts  int
	err     error
}

func (r *fakeRegistry) Start(_ context.Context, period stock.Period) error {
	r.starts++
	if r.err != nil {
		return r.err
	}
	r.period = period
	r.running = true
	return nil
}

func (r *fakeRegistry) Period() stock.Period { return r.period }
func (r *fakeRegistry) IsRunning() bool      { return r.running }

type rolloverCounts struct {
	ok, failed, seeded int
}

func (c *rolloverCounts) ObserveRollover(seeded int, err error) {
	if err != nil {
		c.failed++
		return
	}
	c.ok++
	c.seeded += seeded
}

var ist = time.FixedZone("IST", 5*3600+1800)

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:       true,
		RolloverCron:  "5 0 1 * *",
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func newTestScheduler(cfg config.SchedulerConfig, seeder *fakeSeeder, registry RegistryStarter) *RolloverScheduler {
	s := NewRolloverScheduler(cfg, ist, seeder, registry, zap.NewNop())
	// 23:45 UTC on 31 March is already 1 April in IST
	s.now = func() time.Time { return time.Date(2024, time.March, 31, 23, 45, 0, 0, time.UTC) }
	return s
}

func TestRunNow_SeedsPeriodInLedgerTimeZone(t *testing.T) {
	seeder := &fakeSeeder{seeded: 7}
	registry := &fakeRegistry{period: stock.Period{Year: 2024, Month: time.March}, running: true}
	counts := &rolloverCounts{}
	s := newTestScheduler(testConfig(), seeder, registry)
	s.SetObserver(counts)

	run, err := s.RunNow(context.Background())
	require.NoError(t, err)

	april := stock.Period{Year: 2024, Month: time.April}
	assert.Equal(t, []stock.Period{april}, seeder.periods)
	assert.Equal(t, april, registry.period, "registry moves to the new period")
	assert.Equal(t, JobStatusSuccess, run.Status)
	assert.Equal(t, 7, run.Seeded)
	assert.Equal(t, 1, run.Attempts)
	assert.NotNil(t, run.CompletedAt)
	assert.Equal(t, rolloverCounts{ok: 1, seeded: 7}, *counts)

	last, ok := s.LastRun()
	require.True(t, ok)
	assert.Equal(t, run.ID, last.ID)
}

func TestRunNow_LeavesCurrentRegistryAlone(t *testing.T) {
	registry := &fakeRegistry{period: stock.Period{Year: 2024, Month: time.April}, running: true}
	s := newTestScheduler(testConfig(), &fakeSeeder{}, registry)

	_, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, registry.starts)
}

func TestRunNow_RetriesThenSucceeds(t *testing.T) {
	seeder := &fakeSeeder{errs: []error{shared.FetchFailed("materials", errors.New("db down")), nil}, seeded: 2}
	s := newTestScheduler(testConfig(), seeder, nil)

	run, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, run.Attempts)
	assert.Equal(t, JobStatusSuccess, run.Status)
	assert.Empty(t, run.Error)
}

func TestRunNow_GivesUpAfterRetries(t *testing.T) {
	boom := shared.FetchFailed("materials", errors.New("db down"))
	seeder := &fakeSeeder{errs: []error{boom, boom, boom, boom}}
	counts := &rolloverCounts{}
	s := newTestScheduler(testConfig(), seeder, nil)
	s.SetObserver(counts)

	run, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, shared.ErrFetchFailed)
	assert.Equal(t, 3, seeder.calls(), "one attempt plus two retries")
	assert.Equal(t, JobStatusFailed, run.Status)
	assert.Contains(t, run.Error, "db down")
	assert.Equal(t, 1, counts.failed)
}

func TestRunNow_RegistryFailureIsRetried(t *testing.T) {
	registry := &fakeRegistry{err: errors.New("redis down")}
	cfg := testConfig()
	cfg.RetryAttempts = 0
	s := newTestScheduler(cfg, &fakeSeeder{}, registry)

	_, err := s.RunNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restart stock registry")
}

func TestRunNow_StopsWaitingWhenCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.RetryDelay = time.Hour
	s := newTestScheduler(cfg, &fakeSeeder{errs: []error{errors.New("x")}}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.RunNow(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStart_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	seeder := &fakeSeeder{}
	s := newTestScheduler(cfg, seeder, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	_, err := s.NextRun()
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	assert.NoError(t, s.Stop(context.Background()))
}

func TestStart_InvalidCron(t *testing.T) {
	cfg := testConfig()
	cfg.RolloverCron = "every month please"
	s := newTestScheduler(cfg, &fakeSeeder{}, nil)

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.False(t, s.IsRunning())
}

func TestStartStop_RunOnStartup(t *testing.T) {
	cfg := testConfig()
	cfg.RunOnStartup = true
	seeder := &fakeSeeder{seeded: 3}
	s := newTestScheduler(cfg, seeder, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.Equal(t, 1, seeder.calls())
	require.NoError(t, s.Start(context.Background()), "second start is a no-op")
	assert.Equal(t, 1, seeder.calls())

	next, err := s.NextRun()
	require.NoError(t, err)
	assert.Equal(t, 1, next.In(ist).Day())
	assert.Equal(t, 5, next.In(ist).Minute())

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(context.Background()))
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := newCronLogger(zap.New(core))

	l.Info("wake", "now", "x")
	l.Error(errors.New("boom"), "panic", "job", "rollover")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
