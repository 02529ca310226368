package material

import (
	"context"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/shared"
)

// RawMaterialRepository persists raw materials
type RawMaterialRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RawMaterial, error)
	FindByName(ctx context.Context, name string) (*RawMaterial, error)
	// FindAll returns materials ordered by name
	FindAll(ctx context.Context, filter shared.Filter) ([]RawMaterial, error)
	ListAll(ctx context.Context) ([]RawMaterial, error)
	Save(ctx context.Context, m *RawMaterial) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}
