package stock

import (
	"context"

	"github.com/google/uuid"
)

// StockStatusRepository persists stock status records.
// Implementations return shared.ErrNotFound when a lookup has no match.
type StockStatusRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockStatusRecord, error)
	FindByNameAndPeriod(ctx context.Context, name string, period Period) (*StockStatusRecord, error)
	// FindByPeriod returns the period's records ordered by name
	FindByPeriod(ctx context.Context, period Period) ([]StockStatusRecord, error)
	Save(ctx context.Context, record *StockStatusRecord) error
	// SaveBatch upserts all records; either all are written or none
	SaveBatch(ctx context.Context, records []*StockStatusRecord) error
	ExistsForPeriod(ctx context.Context, period Period) (bool, error)
}
