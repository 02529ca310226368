package production

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"go.uber.org/zap"
)

// ProductionStatusService serves the production status sheets, one per date,
// stage and process.
type ProductionStatusService struct {
	records  production.ProductionStatusRepository
	policies *stock.PolicyRegistry
	logger   *zap.Logger
}

// NewProductionStatusService creates a ProductionStatusService
func NewProductionStatusService(
	records production.ProductionStatusRepository,
	policies *stock.PolicyRegistry,
	logger *zap.Logger,
) *ProductionStatusService {
	if policies == nil {
		policies = stock.NewPolicyRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionStatusService{records: records, policies: policies, logger: logger}
}

// List returns a sheet. An empty sheet is started from the latest earlier
// sheet of the same stage and process, closings carried into openings.
// Sheets classify with three tiers unless another policy is named.
func (s *ProductionStatusService) List(ctx context.Context, key production.SheetKey, policyName string) (*ProductionStatusSheetResponse, error) {
	policy, err := s.policy(policyName)
	if err != nil {
		return nil, err
	}

	rows, err := s.records.FindBySheet(ctx, key)
	if err != nil {
		return nil, shared.FetchFailed("production status", err)
	}
	if len(rows) == 0 {
		if rows, err = s.carryForward(ctx, key); err != nil {
			return nil, err
		}
	}

	records := make([]*production.ProductionStatusRecord, len(rows))
	for i := range rows {
		rows[i].ApplyPolicy(policy)
		records[i] = &rows[i]
	}
	resp := ToProductionStatusSheetResponse(key, policy.Name(), records)
	return &resp, nil
}

// GetByID returns one sheet row under the three-tier policy
func (s *ProductionStatusService) GetByID(ctx context.Context, id uuid.UUID) (*ProductionStatusResponse, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	policy, err := s.policy("")
	if err != nil {
		return nil, err
	}
	rec.ApplyPolicy(policy)
	resp := ToProductionStatusResponse(rec)
	return &resp, nil
}

// SaveBatch writes the rows of one sheet atomically. A row with an ID must
// already belong to the sheet under the same name. A row without an ID
// updates the sheet's row of that name, or is inserted.
func (s *ProductionStatusService) SaveBatch(ctx context.Context, key production.SheetKey, items []ProductionStatusItem) (*ProductionStatusSheetResponse, error) {
	policy, err := s.policy("")
	if err != nil {
		return nil, err
	}
	existing, err := s.records.FindBySheet(ctx, key)
	if err != nil {
		return nil, shared.FetchFailed("production status", err)
	}
	byID := make(map[uuid.UUID]*production.ProductionStatusRecord, len(existing))
	byName := make(map[string]*production.ProductionStatusRecord, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
		byName[existing[i].Name] = &existing[i]
	}

	seen := make(map[string]bool, len(items))
	records := make([]*production.ProductionStatusRecord, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if seen[name] {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item "+name+" appears more than once")
		}
		seen[name] = true

		var rec *production.ProductionStatusRecord
		if item.ID != nil {
			rec = byID[*item.ID]
			if rec == nil {
				return nil, shared.NewDomainError(shared.CodeInvalidInput,
					"Row "+item.ID.String()+" does not belong to this sheet")
			}
			if rec.Name != name {
				return nil, shared.NewDomainError(shared.CodeInvalidInput,
					"Row "+item.ID.String()+" belongs to item "+rec.Name)
			}
		} else {
			rec = byName[name]
		}

		if rec == nil {
			if rec, err = production.NewProductionStatusRecord(key, item.inputs(), policy); err != nil {
				return nil, err
			}
		} else {
			rec.ApplyPolicy(policy)
			if err := rec.SetInputs(item.inputs()); err != nil {
				return nil, err
			}
		}
		records = append(records, rec)
	}

	if err := s.records.SaveBatch(ctx, records); err != nil {
		return nil, shared.SaveFailed("production status", err)
	}
	s.logger.Info("production status saved",
		zap.String("date", key.Date.Format("2006-01-02")),
		zap.String("stage", string(key.Stage)),
		zap.String("process", key.Process),
		zap.Int("rows", len(records)))
	return s.List(ctx, key, "")
}

// Adjust edits the opening, adjustments or minimum level of one row
func (s *ProductionStatusService) Adjust(ctx context.Context, id uuid.UUID, req AdjustProductionStatusRequest) (*ProductionStatusResponse, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	policy, err := s.policy("")
	if err != nil {
		return nil, err
	}
	rec.ApplyPolicy(policy)

	in := rec.Inputs()
	if req.Opening != nil {
		in.Opening = *req.Opening
	}
	if req.Adjustments != nil {
		in.Adjustments = *req.Adjustments
	}
	if req.MinLevel != nil {
		in.MinLevel = *req.MinLevel
	}
	if err := rec.SetInputs(in); err != nil {
		return nil, err
	}
	if err := s.records.Save(ctx, rec); err != nil {
		return nil, shared.SaveFailed("production status", err)
	}

	resp := ToProductionStatusResponse(rec)
	return &resp, nil
}

func (s *ProductionStatusService) carryForward(ctx context.Context, key production.SheetKey) ([]production.ProductionStatusRecord, error) {
	previous, err := s.records.LatestSheetBefore(ctx, key)
	if err != nil {
		return nil, shared.FetchFailed("production status", err)
	}
	if len(previous) == 0 {
		return nil, nil
	}

	records := make([]*production.ProductionStatusRecord, len(previous))
	for i := range previous {
		if records[i], err = previous[i].CarryForward(key); err != nil {
			return nil, err
		}
	}
	if err := s.records.SaveBatch(ctx, records); err != nil {
		return nil, shared.SaveFailed("production status", err)
	}
	s.logger.Info("production status carried forward",
		zap.String("from", previous[0].Key.Date.Format("2006-01-02")),
		zap.String("to", key.Date.Format("2006-01-02")),
		zap.String("stage", string(key.Stage)),
		zap.String("process", key.Process),
		zap.Int("rows", len(records)))

	rows := make([]production.ProductionStatusRecord, len(records))
	for i, r := range records {
		rows[i] = *r
	}
	return rows, nil
}

func (s *ProductionStatusService) policy(name string) (stock.ClassificationPolicy, error) {
	if name == "" {
		name = stock.PolicyThreeTier
	}
	return s.policies.Get(name)
}
