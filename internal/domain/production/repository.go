package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// TaskRepository persists production tasks
type TaskRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// FindAll returns tasks newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Task, error)
	Save(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	// UtilisedTotalsByMaterial sums assigned quantities of tasks whose
	// utilisation was applied within the period, per material name
	UtilisedTotalsByMaterial(ctx context.Context, period stock.Period) (map[string]decimal.Decimal, error)
}

// StaffFilter narrows staff listings
type StaffFilter struct {
	shared.Filter
	Status StaffStatus
}

// StaffRepository persists staff records
type StaffRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	// FindByName matches the unique staff name exactly
	FindByName(ctx context.Context, name string) (*Staff, error)
	// FindAll returns staff ordered by name
	FindAll(ctx context.Context, filter StaffFilter) ([]Staff, error)
	Save(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductionStatusRepository persists production status sheets
type ProductionStatusRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionStatusRecord, error)
	// FindBySheet returns the sheet's rows ordered by name
	FindBySheet(ctx context.Context, key SheetKey) ([]ProductionStatusRecord, error)
	// LatestSheetBefore returns the rows of the most recent sheet with the same
	// stage and process dated before key.Date. It returns no rows if none exists.
	LatestSheetBefore(ctx context.Context, key SheetKey) ([]ProductionStatusRecord, error)
	Save(ctx context.Context, r *ProductionStatusRecord) error
	// SaveBatch upserts all rows atomically
	SaveBatch(ctx context.Context, records []*ProductionStatusRecord) error
}
