package stock

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

var errStorage = errors.New("storage unavailable")

// memStockRepo is an in-memory StockStatusRepository storing copies
type memStockRepo struct {
	mu       sync.Mutex
	records  map[uuid.UUID]stock.StockStatusRecord
	failSave bool
	failFind bool
	saves    int
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{records: make(map[uuid.UUID]stock.StockStatusRecord)}
}

func (r *memStockRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockStatusRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, errStorage
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rec, nil
}

func (r *memStockRepo) FindByNameAndPeriod(_ context.Context, name string, period stock.Period) (*stock.StockStatusRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, errStorage
	}
	for _, rec := range r.records {
		if rec.Name == name && rec.Period == period {
			c := rec
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRepo) FindByPeriod(_ context.Context, period stock.Period) ([]stock.StockStatusRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, errStorage
	}
	var out []stock.StockStatusRecord
	for _, rec := range r.records {
		if rec.Period == period {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memStockRepo) Save(_ context.Context, rec *stock.StockStatusRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errStorage
	}
	r.saves++
	r.records[rec.ID] = *rec
	return nil
}

func (r *memStockRepo) SaveBatch(_ context.Context, recs []*stock.StockStatusRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errStorage
	}
	for _, rec := range recs {
		r.records[rec.ID] = *rec
	}
	return nil
}

func (r *memStockRepo) ExistsForPeriod(_ context.Context, period stock.Period) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return false, errStorage
	}
	for _, rec := range r.records {
		if rec.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (r *memStockRepo) snapshot() map[uuid.UUID]stock.StockStatusRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := make(map[uuid.UUID]stock.StockStatusRecord, len(r.records))
	for k, v := range r.records {
		c[k] = v
	}
	return c
}

func (r *memStockRepo) restore(s map[uuid.UUID]stock.StockStatusRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = s
}

func (r *memStockRepo) put(rec *stock.StockStatusRecord) {
	r.records[rec.ID] = *rec
}

// memMaterialRepo is an in-memory RawMaterialRepository
type memMaterialRepo struct {
	mu        sync.Mutex
	materials map[uuid.UUID]material.RawMaterial
	failSave  bool
}

func newMemMaterialRepo(ms ...*material.RawMaterial) *memMaterialRepo {
	r := &memMaterialRepo{materials: make(map[uuid.UUID]material.RawMaterial)}
	for _, m := range ms {
		r.materials[m.ID] = *m
	}
	return r
}

func (r *memMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*material.RawMaterial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.materials[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &m, nil
}

func (r *memMaterialRepo) FindByName(_ context.Context, name string) (*material.RawMaterial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.materials {
		if m.Name == name {
			c := m
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMaterialRepo) FindAll(ctx context.Context, _ shared.Filter) ([]material.RawMaterial, error) {
	return r.ListAll(ctx)
}

func (r *memMaterialRepo) ListAll(_ context.Context) ([]material.RawMaterial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]material.RawMaterial, 0, len(r.materials))
	for _, m := range r.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memMaterialRepo) Save(_ context.Context, m *material.RawMaterial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errStorage
	}
	r.materials[m.ID] = *m
	return nil
}

func (r *memMaterialRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.materials, id)
	return nil
}

func (r *memMaterialRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := r.FindByName(ctx, name)
	return err == nil, nil
}

// totalsPurchaseRepo only answers ReceivedTotalsByMaterial
type totalsPurchaseRepo struct {
	purchasing.StockPurchaseRepository
	totals map[string]decimal.Decimal
}

func (r *totalsPurchaseRepo) ReceivedTotalsByMaterial(context.Context, stock.Period) (map[string]decimal.Decimal, error) {
	return r.totals, nil
}

// totalsTaskRepo only answers UtilisedTotalsByMaterial
type totalsTaskRepo struct {
	production.TaskRepository
	totals map[string]decimal.Decimal
}

func (r *totalsTaskRepo) UtilisedTotalsByMaterial(context.Context, stock.Period) (map[string]decimal.Decimal, error) {
	return r.totals, nil
}

// rollbackScope restores the stock and material stores when fn fails
type rollbackScope struct {
	*NoOpTransactionScope
	stockRepo    *memStockRepo
	materialRepo *memMaterialRepo
}

func (s *rollbackScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	records := s.stockRepo.snapshot()
	s.materialRepo.mu.Lock()
	materials := make(map[uuid.UUID]material.RawMaterial, len(s.materialRepo.materials))
	for k, v := range s.materialRepo.materials {
		materials[k] = v
	}
	s.materialRepo.mu.Unlock()

	if err := s.NoOpTransactionScope.Execute(ctx, fn); err != nil {
		s.stockRepo.restore(records)
		s.materialRepo.mu.Lock()
		s.materialRepo.materials = materials
		s.materialRepo.mu.Unlock()
		return err
	}
	return nil
}

type fixture struct {
	stockRepo    *memStockRepo
	materialRepo *memMaterialRepo
	purchases    *totalsPurchaseRepo
	tasks        *totalsTaskRepo
	scope        *rollbackScope
}

func newFixture(ms ...*material.RawMaterial) *fixture {
	f := &fixture{
		stockRepo:    newMemStockRepo(),
		materialRepo: newMemMaterialRepo(ms...),
		purchases:    &totalsPurchaseRepo{totals: map[string]decimal.Decimal{}},
		tasks:        &totalsTaskRepo{totals: map[string]decimal.Decimal{}},
	}
	f.scope = &rollbackScope{
		NoOpTransactionScope: NewNoOpTransactionScope(f.stockRepo, f.materialRepo, f.purchases, f.tasks),
		stockRepo:            f.stockRepo,
		materialRepo:         f.materialRepo,
	}
	return f
}

func newMaterial(name, minLevel string) *material.RawMaterial {
	m, err := material.NewRawMaterial("", name, "Spices", "kg", decimal.RequireFromString(minLevel))
	if err != nil {
		panic(err)
	}
	return m
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
