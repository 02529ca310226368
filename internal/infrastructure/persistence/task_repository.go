package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByID finds a task by its ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds tasks matching the filter
func (r *GormTaskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]production.Task, error) {
	var rows []models.TaskModel
	query := applyPaging(r.db.WithContext(ctx).Model(&models.TaskModel{}), filter, "material_name", TaskSortFields, "created_at DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]production.Task, len(rows))
	for i := range rows {
		tasks[i] = *rows[i].ToDomain()
	}
	return tasks, nil
}

// Save inserts or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, t *production.Task) error {
	return r.db.WithContext(ctx).Save(models.TaskModelFromDomain(t)).Error
}

// Delete deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TaskModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of tasks
func (r *GormTaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TaskModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UtilisedTotalsByMaterial sums the assigned quantity of tasks whose
// utilisation was applied within the period
func (r *GormTaskRepository) UtilisedTotalsByMaterial(ctx context.Context, period stock.Period) (map[string]decimal.Decimal, error) {
	var rows []materialTotal
	if err := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Select("material_name, SUM(qty_assigned) AS total").
		Where("utilisation_applied = ? AND utilised_at >= ? AND utilised_at < ?",
			true, period.Start(), period.Next().Start()).
		Group("material_name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return totalsByName(rows), nil
}

// Ensure GormTaskRepository implements TaskRepository
var _ production.TaskRepository = (*GormTaskRepository)(nil)
