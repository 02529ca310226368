package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.Vendor, error) {
	var model models.VendorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds vendors matching the filter
func (r *GormVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.Vendor, error) {
	var rows []models.VendorModel
	query := applyPaging(r.db.WithContext(ctx).Model(&models.VendorModel{}), filter, "name", VendorSortFields, "name ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	vendors := make([]purchasing.Vendor, len(rows))
	for i := range rows {
		vendors[i] = *rows[i].ToDomain()
	}
	return vendors, nil
}

// Save inserts or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, v *purchasing.Vendor) error {
	return r.db.WithContext(ctx).Save(models.VendorModelFromDomain(v)).Error
}

// Delete deletes a vendor
func (r *GormVendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.VendorModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormVendorRepository implements VendorRepository
var _ purchasing.VendorRepository = (*GormVendorRepository)(nil)
