package stock

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"go.uber.org/zap"
)

// StockStatusService serves the stock status sheet: listing with rollover,
// batch saves, single-row edits and recalculation from source documents.
type StockStatusService struct {
	scope     TransactionScope
	records   stock.StockStatusRepository
	materials material.RawMaterialRepository
	policies  *stock.PolicyRegistry
	registry  *Registry
	logger    *zap.Logger
}

// NewStockStatusService creates a StockStatusService
func NewStockStatusService(
	scope TransactionScope,
	records stock.StockStatusRepository,
	materials material.RawMaterialRepository,
	policies *stock.PolicyRegistry,
	logger *zap.Logger,
) *StockStatusService {
	if policies == nil {
		policies = stock.NewPolicyRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockStatusService{
		scope:     scope,
		records:   records,
		materials: materials,
		policies:  policies,
		logger:    logger,
	}
}

// SetRegistry attaches the shared stock registry
func (s *StockStatusService) SetRegistry(r *Registry) {
	s.registry = r
}

// List returns the period's sheet classified with the named policy.
// An empty period is seeded from the material master first.
func (s *StockStatusService) List(ctx context.Context, period stock.Period, policyName string) (*StockStatusSummaryResponse, error) {
	policy, err := s.policies.Get(policyName)
	if err != nil {
		return nil, err
	}
	items, err := s.Records(ctx, period, policy)
	if err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(period, policy.Name(), stock.Summarize(items))
	return &resp, nil
}

// Records returns the period's records, seeding the period when it is empty
func (s *StockStatusService) Records(ctx context.Context, period stock.Period, policy stock.ClassificationPolicy) ([]stock.StockStatusRecord, error) {
	exists, err := s.records.ExistsForPeriod(ctx, period)
	if err != nil {
		return nil, shared.FetchFailed("stock status", err)
	}
	if !exists {
		if _, err := s.SeedPeriod(ctx, period); err != nil {
			return nil, err
		}
	}

	items, err := s.records.FindByPeriod(ctx, period)
	if err != nil {
		return nil, shared.FetchFailed("stock status", err)
	}
	for i := range items {
		items[i].ApplyPolicy(policy)
	}
	return items, nil
}

// Summary returns the status counts for the period
func (s *StockStatusService) Summary(ctx context.Context, period stock.Period, policyName string) (*StockStatusSummaryResponse, error) {
	resp, err := s.List(ctx, period, policyName)
	if err != nil {
		return nil, err
	}
	resp.Items = nil
	return resp, nil
}

// Stats returns the inventory widget counts under the three-tier policy
func (s *StockStatusService) Stats(ctx context.Context, period stock.Period) (*StockStatsResponse, error) {
	policy, err := s.policies.Get(stock.PolicyThreeTier)
	if err != nil {
		return nil, err
	}
	items, err := s.Records(ctx, period, policy)
	if err != nil {
		return nil, err
	}
	st := stock.StatsOf(items)
	return &StockStatsResponse{
		TotalItems:    st.TotalItems,
		LowStock:      st.LowStock,
		CriticalStock: st.CriticalStock,
	}, nil
}

// SeedPeriod makes sure every material has a record for period. Existing
// records are left as they are. Returns the number of records created.
func (s *StockStatusService) SeedPeriod(ctx context.Context, period stock.Period) (int, error) {
	materials, err := s.materials.ListAll(ctx)
	if err != nil {
		return 0, shared.FetchFailed("materials", err)
	}

	policy := s.policies.Default()
	created := 0
	var seeded Changes
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		created = 0
		seeded = seeded[:0]
		for i := range materials {
			rec, isNew, err := getOrSeed(ctx, repos.StockStatusRepo(), &materials[i], period, policy)
			if err != nil {
				return err
			}
			if isNew {
				created++
				seeded = append(seeded, rec)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.registry.Update(ctx, seeded...)

	if created > 0 {
		s.logger.Info("Seeded stock status period",
			zap.String("period", period.String()),
			zap.Int("created", created),
		)
	}
	return created, nil
}

// GetOrSeed returns one material's record for period, seeding it if needed
func (s *StockStatusService) GetOrSeed(ctx context.Context, materialID uuid.UUID, period stock.Period) (*StockStatusResponse, error) {
	var rec *stock.StockStatusRecord
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		m, err := resolveMaterial(ctx, repos.MaterialRepo(), stock.MaterialRef{ID: materialID})
		if err != nil {
			return err
		}
		rec, _, err = getOrSeed(ctx, repos.StockStatusRepo(), m, period, s.policies.Default())
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToStockStatusResponse(rec)
	return &resp, nil
}

// GetByID returns one record
func (s *StockStatusService) GetByID(ctx context.Context, id uuid.UUID) (*StockStatusResponse, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, fetchError("stock status", err)
	}
	rec.ApplyPolicy(s.policies.Default())
	resp := ToStockStatusResponse(rec)
	return &resp, nil
}

// SaveBatch writes a whole period sheet. Rows with an ID update the stored
// record, rows without insert a new one. Closing balance and status are
// recomputed for every row. The batch is all-or-nothing.
func (s *StockStatusService) SaveBatch(ctx context.Context, period stock.Period, items []SaveStockStatusItem) ([]StockStatusResponse, error) {
	policy := s.policies.Default()
	records := make([]*stock.StockStatusRecord, 0, len(items))

	for _, item := range items {
		var rec *stock.StockStatusRecord
		if item.ID != nil && *item.ID != uuid.Nil {
			existing, err := s.records.FindByID(ctx, *item.ID)
			if err != nil {
				return nil, fetchError("stock status", err)
			}
			if existing.Period != period {
				return nil, shared.NewDomainError(shared.CodeInvalidInput,
					"Stock status row "+existing.ID.String()+" belongs to "+existing.Period.String()+", not "+period.String())
			}
			if existing.Name != strings.TrimSpace(item.Name) {
				return nil, shared.NewDomainError(shared.CodeInvalidInput,
					"Stock status row "+existing.ID.String()+" is for "+existing.Name+", not "+item.Name)
			}
			rec = existing
			rec.ApplyPolicy(policy)
		} else {
			created, err := stock.NewStockStatusRecord(period, item.Name, item.Category, item.OpeningBal, item.MinLevel, policy)
			if err != nil {
				return nil, err
			}
			rec = created
		}
		if err := applyItem(rec, item); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := s.records.SaveBatch(ctx, records); err != nil {
		return nil, shared.SaveFailed("stock status batch", err)
	}
	s.registry.Update(ctx, records...)

	out := make([]StockStatusResponse, len(records))
	for i, rec := range records {
		out[i] = ToStockStatusResponse(rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Update edits opening balance, adjustment or minimum level of one record
func (s *StockStatusService) Update(ctx context.Context, id uuid.UUID, req UpdateStockStatusRequest) (*StockStatusResponse, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, fetchError("stock status", err)
	}
	rec.ApplyPolicy(s.policies.Default())

	if req.OpeningBal != nil {
		if err := rec.SetOpeningBalance(*req.OpeningBal); err != nil {
			return nil, err
		}
	}
	if req.AdjPlus != nil {
		if err := rec.SetAdjustment(*req.AdjPlus); err != nil {
			return nil, err
		}
	}
	if req.MinLevel != nil {
		if err := rec.SetMinLevel(*req.MinLevel); err != nil {
			return nil, err
		}
	}

	if err := s.records.Save(ctx, rec); err != nil {
		return nil, shared.SaveFailed("stock status", err)
	}
	s.registry.Update(ctx, rec)

	resp := ToStockStatusResponse(rec)
	return &resp, nil
}

// Recalculate rebuilds the period's purchased and utilised totals from the
// received purchases and utilised tasks dated in the period.
func (s *StockStatusService) Recalculate(ctx context.Context, period stock.Period) ([]StockStatusResponse, error) {
	if _, err := s.SeedPeriod(ctx, period); err != nil {
		return nil, err
	}

	policy := s.policies.Default()
	var updated Changes
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		purchased, err := repos.PurchaseRepo().ReceivedTotalsByMaterial(ctx, period)
		if err != nil {
			return shared.FetchFailed("purchase totals", err)
		}
		utilised, err := repos.TaskRepo().UtilisedTotalsByMaterial(ctx, period)
		if err != nil {
			return shared.FetchFailed("utilisation totals", err)
		}

		items, err := repos.StockStatusRepo().FindByPeriod(ctx, period)
		if err != nil {
			return shared.FetchFailed("stock status", err)
		}
		updated = make(Changes, 0, len(items))
		for i := range items {
			rec := &items[i]
			rec.ApplyPolicy(policy)
			if err := rec.SetTotals(totalFor(purchased, rec.Name), totalFor(utilised, rec.Name)); err != nil {
				return err
			}
			updated = append(updated, rec)
		}
		if err := repos.StockStatusRepo().SaveBatch(ctx, updated); err != nil {
			return shared.SaveFailed("recalculated stock status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.registry.Update(ctx, updated...)

	out := make([]StockStatusResponse, len(updated))
	for i, rec := range updated {
		out[i] = ToStockStatusResponse(rec)
	}
	return out, nil
}

// applyItem copies the user-entered columns of a batch row onto rec
func applyItem(rec *stock.StockStatusRecord, item SaveStockStatusItem) error {
	rec.Category = item.Category
	if err := rec.SetOpeningBalance(item.OpeningBal); err != nil {
		return err
	}
	if err := rec.SetTotals(item.Purchases, item.Utilised); err != nil {
		return err
	}
	if err := rec.SetAdjustment(item.AdjPlus); err != nil {
		return err
	}
	return rec.SetMinLevel(item.MinLevel)
}

func totalFor(totals map[string]decimal.Decimal, name string) decimal.Decimal {
	if v, ok := totals[name]; ok {
		return v
	}
	return decimal.Zero
}

func fetchError(what string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return shared.FetchFailed(what, err)
}
