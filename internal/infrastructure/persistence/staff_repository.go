package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStaffRepository implements StaffRepository using GORM
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GormStaffRepository
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// FindByID finds a staff member by ID
func (r *GormStaffRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Staff, error) {
	var model models.StaffModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a staff member by unique name
func (r *GormStaffRepository) FindByName(ctx context.Context, name string) (*production.Staff, error) {
	var model models.StaffModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds staff matching the filter
func (r *GormStaffRepository) FindAll(ctx context.Context, filter production.StaffFilter) ([]production.Staff, error) {
	var rows []models.StaffModel
	query := r.db.WithContext(ctx).Model(&models.StaffModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	query = applyPaging(query, filter.Filter, "name", StaffSortFields, "name ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	staff := make([]production.Staff, len(rows))
	for i := range rows {
		staff[i] = *rows[i].ToDomain()
	}
	return staff, nil
}

// Save inserts or updates a staff member
func (r *GormStaffRepository) Save(ctx context.Context, s *production.Staff) error {
	return r.db.WithContext(ctx).Save(models.StaffModelFromDomain(s)).Error
}

// Delete deletes a staff member
func (r *GormStaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StaffModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStaffRepository implements StaffRepository
var _ production.StaffRepository = (*GormStaffRepository)(nil)
