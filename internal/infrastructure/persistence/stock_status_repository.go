package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockStatusRepository implements StockStatusRepository using GORM
type GormStockStatusRepository struct {
	db *gorm.DB
}

// NewGormStockStatusRepository creates a new GormStockStatusRepository
func NewGormStockStatusRepository(db *gorm.DB) *GormStockStatusRepository {
	return &GormStockStatusRepository{db: db}
}

// FindByID finds a record by its ID
func (r *GormStockStatusRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockStatusRecord, error) {
	var model models.StockStatusModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByNameAndPeriod finds a material's record for a period
func (r *GormStockStatusRepository) FindByNameAndPeriod(ctx context.Context, name string, period stock.Period) (*stock.StockStatusRecord, error) {
	var model models.StockStatusModel
	if err := r.db.WithContext(ctx).
		Where("date = ? AND name = ?", period.Start(), name).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByPeriod returns the period's records ordered by name
func (r *GormStockStatusRepository) FindByPeriod(ctx context.Context, period stock.Period) ([]stock.StockStatusRecord, error) {
	var rows []models.StockStatusModel
	if err := r.db.WithContext(ctx).
		Where("date = ?", period.Start()).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]stock.StockStatusRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// Save inserts or updates a record
func (r *GormStockStatusRepository) Save(ctx context.Context, record *stock.StockStatusRecord) error {
	return r.db.WithContext(ctx).Save(models.StockStatusModelFromDomain(record)).Error
}

// SaveBatch upserts all records in one transaction
func (r *GormStockStatusRepository) SaveBatch(ctx context.Context, records []*stock.StockStatusRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := tx.Save(models.StockStatusModelFromDomain(record)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ExistsForPeriod reports whether any record exists for the period
func (r *GormStockStatusRepository) ExistsForPeriod(ctx context.Context, period stock.Period) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockStatusModel{}).
		Where("date = ?", period.Start()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormStockStatusRepository implements StockStatusRepository
var _ stock.StockStatusRepository = (*GormStockStatusRepository)(nil)
