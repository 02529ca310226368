package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRawMaterialRepository implements RawMaterialRepository using GORM
type GormRawMaterialRepository struct {
	db *gorm.DB
}

// NewGormRawMaterialRepository creates a new GormRawMaterialRepository
func NewGormRawMaterialRepository(db *gorm.DB) *GormRawMaterialRepository {
	return &GormRawMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormRawMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*material.RawMaterial, error) {
	var model models.RawMaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a material by its unique name
func (r *GormRawMaterialRepository) FindByName(ctx context.Context, name string) (*material.RawMaterial, error) {
	var model models.RawMaterialModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds materials matching the filter
func (r *GormRawMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]material.RawMaterial, error) {
	var rows []models.RawMaterialModel
	query := applyPaging(r.db.WithContext(ctx).Model(&models.RawMaterialModel{}), filter, "name", MaterialSortFields, "name ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMaterials(rows), nil
}

// ListAll returns every material ordered by name
func (r *GormRawMaterialRepository) ListAll(ctx context.Context) ([]material.RawMaterial, error) {
	var rows []models.RawMaterialModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMaterials(rows), nil
}

// Save inserts or updates a material
func (r *GormRawMaterialRepository) Save(ctx context.Context, m *material.RawMaterial) error {
	return r.db.WithContext(ctx).Save(models.RawMaterialModelFromDomain(m)).Error
}

// Delete deletes a material
func (r *GormRawMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RawMaterialModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName reports whether a material with the name exists
func (r *GormRawMaterialRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RawMaterialModel{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toMaterials(rows []models.RawMaterialModel) []material.RawMaterial {
	out := make([]material.RawMaterial, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormRawMaterialRepository implements RawMaterialRepository
var _ material.RawMaterialRepository = (*GormRawMaterialRepository)(nil)
