package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// PurchaseFilter narrows purchase listings
type PurchaseFilter struct {
	shared.Filter
	Period     *stock.Period
	Status     PurchaseStatus
	MaterialID *uuid.UUID
}

// StockPurchaseRepository persists stock purchases
type StockPurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockPurchase, error)
	// FindAll returns purchases newest first
	FindAll(ctx context.Context, filter PurchaseFilter) ([]StockPurchase, error)
	Save(ctx context.Context, p *StockPurchase) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ReceivedTotalsByMaterial sums received quantities per material name in a period
	ReceivedTotalsByMaterial(ctx context.Context, period stock.Period) (map[string]decimal.Decimal, error)
}

// VendorRepository persists vendors
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Vendor, error)
	Save(ctx context.Context, v *Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}
