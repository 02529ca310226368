package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"go.uber.org/zap"
)

// PurchaseService handles stock purchases. Every write saves the purchase and
// publishes its stock events inside one transaction, so a purchase is never
// stored without the matching stock movement.
type PurchaseService struct {
	scope     stockapp.TransactionScope
	purchases purchasing.StockPurchaseRepository
	vendors   purchasing.VendorRepository
	materials material.RawMaterialRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	scope stockapp.TransactionScope,
	purchases purchasing.StockPurchaseRepository,
	vendors purchasing.VendorRepository,
	materials material.RawMaterialRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		scope:     scope,
		purchases: purchases,
		vendors:   vendors,
		materials: materials,
		publisher: publisher,
		logger:    logger,
	}
}

// Create records a purchase. A purchase created as received is added to stock.
func (s *PurchaseService) Create(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error) {
	details, err := s.details(ctx, req)
	if err != nil {
		return nil, err
	}
	p, err := purchasing.NewStockPurchase(details)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, false); err != nil {
		return nil, err
	}

	response := ToPurchaseResponse(p)
	return &response, nil
}

// GetByID retrieves a purchase by ID
func (s *PurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseResponse(p)
	return &response, nil
}

// List retrieves purchases, newest first, optionally limited to one month
func (s *PurchaseService) List(ctx context.Context, filter PurchaseListFilter) ([]PurchaseResponse, error) {
	f := purchasing.PurchaseFilter{
		Filter:     shared.DefaultFilter(),
		Status:     purchasing.PurchaseStatus(filter.Status),
		MaterialID: filter.MaterialID,
	}
	f.OrderBy = "purchase_date"
	f.OrderDir = "desc"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
		f.OrderDir = filter.OrderDir
	}
	if filter.Month != "" {
		period, err := stock.ParsePeriod(filter.Month)
		if err != nil {
			return nil, shared.WrapDomainError(shared.CodeInvalidInput, "Invalid month", err)
		}
		f.Period = &period
	}

	purchases, err := s.purchases.FindAll(ctx, f)
	if err != nil {
		return nil, shared.FetchFailed("purchases", err)
	}
	out := make([]PurchaseResponse, len(purchases))
	for i := range purchases {
		out[i] = ToPurchaseResponse(&purchases[i])
	}
	return out, nil
}

// Update replaces a purchase. Status and line changes are reflected in stock.
func (s *PurchaseService) Update(ctx context.Context, id uuid.UUID, req PurchaseRequest) (*PurchaseResponse, error) {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.Update(details); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, false); err != nil {
		return nil, err
	}

	response := ToPurchaseResponse(p)
	return &response, nil
}

// Receive marks an ordered purchase as received
func (s *PurchaseService) Receive(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	return s.transition(ctx, id, (*purchasing.StockPurchase).MarkReceived)
}

// Cancel cancels a purchase
func (s *PurchaseService) Cancel(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	return s.transition(ctx, id, (*purchasing.StockPurchase).Cancel)
}

// Delete removes a purchase, taking it out of stock if it was received
func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p.MarkDeleted()
	return s.persist(ctx, p, true)
}

func (s *PurchaseService) transition(ctx context.Context, id uuid.UUID, fn func(*purchasing.StockPurchase) error) (*PurchaseResponse, error) {
	p, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, p, false); err != nil {
		return nil, err
	}
	response := ToPurchaseResponse(p)
	return &response, nil
}

// persist writes the purchase and propagates its events in one transaction
func (s *PurchaseService) persist(ctx context.Context, p *purchasing.StockPurchase, remove bool) error {
	var unit *stockapp.Unit
	err := s.scope.Execute(ctx, func(repos stockapp.TransactionalRepositories) error {
		if remove {
			if err := repos.PurchaseRepo().Delete(ctx, p.ID); err != nil {
				return shared.SaveFailed("purchase", err)
			}
		} else if err := repos.PurchaseRepo().Save(ctx, p); err != nil {
			return shared.SaveFailed("purchase", err)
		}

		events := p.GetDomainEvents()
		if len(events) == 0 || s.publisher == nil {
			return nil
		}
		txCtx, u := stockapp.BeginUnit(ctx, repos)
		unit = u
		return s.publisher.Publish(txCtx, events...)
	})
	if err != nil {
		s.logger.Warn("purchase write rolled back",
			zap.String("purchase_id", p.ID.String()),
			zap.Error(err),
		)
		return err
	}

	unit.Committed(ctx)
	p.ClearDomainEvents()
	return nil
}

// details resolves the referenced material and vendor into domain details
func (s *PurchaseService) details(ctx context.Context, req PurchaseRequest) (purchasing.PurchaseDetails, error) {
	date, err := time.ParseInLocation(time.DateOnly, req.PurchaseDate, time.UTC)
	if err != nil {
		return purchasing.PurchaseDetails{}, shared.WrapDomainError(shared.CodeInvalidInput, "Invalid purchase date", err)
	}

	var m *material.RawMaterial
	if req.MaterialID != nil && *req.MaterialID != uuid.Nil {
		m, err = s.materials.FindByID(ctx, *req.MaterialID)
	} else {
		m, err = s.materials.FindByName(ctx, req.MaterialName)
	}
	if err != nil {
		return purchasing.PurchaseDetails{}, err
	}

	vendorName := req.VendorName
	if req.VendorID != nil && vendorName == "" {
		v, err := s.vendors.FindByID(ctx, *req.VendorID)
		if err != nil {
			return purchasing.PurchaseDetails{}, err
		}
		vendorName = v.Name
	}

	unit := req.Unit
	if unit == "" {
		unit = m.Unit
	}
	return purchasing.PurchaseDetails{
		PurchaseDate:  date,
		VendorID:      req.VendorID,
		VendorName:    vendorName,
		PurchaseOrder: req.PurchaseOrder,
		Invoice:       req.Invoice,
		MaterialID:    m.ID,
		MaterialName:  m.Name,
		Quantity:      req.Quantity,
		Unit:          unit,
		UnitPrice:     req.UnitPrice,
		Status:        purchasing.PurchaseStatus(req.Status),
	}, nil
}
