package stock

import (
	"context"
	"errors"
	"sync"

	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"go.uber.org/zap"
)

// SnapshotStore keeps the registry's per-material snapshots
type SnapshotStore interface {
	Put(ctx context.Context, period stock.Period, records ...stock.StockStatusRecord) error
	Get(ctx context.Context, period stock.Period, name string) (*stock.StockStatusRecord, bool, error)
	All(ctx context.Context, period stock.Period) ([]stock.StockStatusRecord, error)
	Clear(ctx context.Context, period stock.Period) error
}

// ErrRegistryStopped is returned by reads on a registry that is not running
var ErrRegistryStopped = errors.New("stock registry is not running")

// Registry is the shared cache of current stock levels for one period, keyed
// by material name. It is constructed once and passed to the components that
// need it. Only the propagator and stock status saves write to it, and only
// after the underlying write committed. Readers get copies and must not assume
// freshness beyond the last successful propagation.
type Registry struct {
	mu      sync.RWMutex
	store   SnapshotStore
	records stock.StockStatusRepository
	logger  *zap.Logger

	period  stock.Period
	running bool
}

// NewRegistry creates a stopped registry
func NewRegistry(records stock.StockStatusRepository, store SnapshotStore, logger *zap.Logger) *Registry {
	if store == nil {
		store = NewMemorySnapshotStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:   store,
		records: records,
		logger:  logger,
	}
}

// Start loads the period's records and begins serving reads.
// Starting an already running registry on another period switches to it.
func (r *Registry) Start(ctx context.Context, period stock.Period) error {
	items, err := r.records.FindByPeriod(ctx, period)
	if err != nil {
		return shared.FetchFailed("stock status for registry", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running && r.period != period {
		if err := r.store.Clear(ctx, r.period); err != nil {
			r.logger.Warn("failed to clear registry snapshot", zap.String("period", r.period.String()), zap.Error(err))
		}
	}
	if err := r.store.Clear(ctx, period); err != nil {
		return err
	}
	if len(items) > 0 {
		if err := r.store.Put(ctx, period, items...); err != nil {
			return err
		}
	}
	r.period = period
	r.running = true

	r.logger.Info("Stock registry started",
		zap.String("period", period.String()),
		zap.Int("materials", len(items)),
	)
	return nil
}

// Stop drops the cache. Reads fall back to explicit fetches afterwards.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}
	r.running = false
	if err := r.store.Clear(ctx, r.period); err != nil {
		return err
	}
	r.logger.Info("Stock registry stopped", zap.String("period", r.period.String()))
	return nil
}

// IsRunning returns true while the registry serves reads
func (r *Registry) IsRunning() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Period returns the period the registry caches
func (r *Registry) Period() stock.Period {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.period
}

// Lookup returns the cached record for a material
func (r *Registry) Lookup(ctx context.Context, name string) (*stock.StockStatusRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.running {
		return nil, false, ErrRegistryStopped
	}
	return r.store.Get(ctx, r.period, name)
}

// Items returns every cached record
func (r *Registry) Items(ctx context.Context) ([]stock.StockStatusRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.running {
		return nil, ErrRegistryStopped
	}
	return r.store.All(ctx, r.period)
}

// Update stores committed records. Records for other periods are ignored.
// A nil or stopped registry ignores updates.
func (r *Registry) Update(ctx context.Context, records ...*stock.StockStatusRecord) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	batch := make([]stock.StockStatusRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil && rec.Period == r.period {
			batch = append(batch, *rec.Clone())
		}
	}
	if len(batch) == 0 {
		return
	}
	if err := r.store.Put(ctx, r.period, batch...); err != nil {
		// storage already holds the committed values; a full fetch reconciles
		r.logger.Warn("failed to update stock registry", zap.Error(err))
	}
}

// MemorySnapshotStore is an in-process SnapshotStore
type MemorySnapshotStore struct {
	mu      sync.RWMutex
	periods map[stock.Period]map[string]stock.StockStatusRecord
}

// NewMemorySnapshotStore creates an empty MemorySnapshotStore
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{periods: make(map[stock.Period]map[string]stock.StockStatusRecord)}
}

// Put stores records
func (s *MemorySnapshotStore) Put(_ context.Context, period stock.Period, records ...stock.StockStatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName, ok := s.periods[period]
	if !ok {
		byName = make(map[string]stock.StockStatusRecord)
		s.periods[period] = byName
	}
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	return nil
}

// Get returns one record
func (s *MemorySnapshotStore) Get(_ context.Context, period stock.Period, name string) (*stock.StockStatusRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.periods[period][name]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

// All returns the period's records in no particular order
func (s *MemorySnapshotStore) All(_ context.Context, period stock.Period) ([]stock.StockStatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]stock.StockStatusRecord, 0, len(s.periods[period]))
	for _, rec := range s.periods[period] {
		out = append(out, rec)
	}
	return out, nil
}

// Clear drops the period
func (s *MemorySnapshotStore) Clear(_ context.Context, period stock.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.periods, period)
	return nil
}

// StockReader answers "what is the current stock of X" from the registry when
// it is running for the requested period, and from storage otherwise.
type StockReader struct {
	registry *Registry
	records  stock.StockStatusRepository
}

// NewStockReader creates a StockReader. registry may be nil.
func NewStockReader(registry *Registry, records stock.StockStatusRepository) *StockReader {
	return &StockReader{registry: registry, records: records}
}

// Current returns the material's record for period
func (s *StockReader) Current(ctx context.Context, name string, period stock.Period) (*stock.StockStatusRecord, error) {
	if s.registry.IsRunning() && s.registry.Period() == period {
		rec, ok, err := s.registry.Lookup(ctx, name)
		if err == nil && ok {
			return rec, nil
		}
	}
	rec, err := s.records.FindByNameAndPeriod(ctx, name, period)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		return nil, shared.FetchFailed("stock status", err)
	}
	return rec, nil
}
