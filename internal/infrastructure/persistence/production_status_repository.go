package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductionStatusRepository implements ProductionStatusRepository using GORM
type GormProductionStatusRepository struct {
	db *gorm.DB
}

// NewGormProductionStatusRepository creates a new GormProductionStatusRepository
func NewGormProductionStatusRepository(db *gorm.DB) *GormProductionStatusRepository {
	return &GormProductionStatusRepository{db: db}
}

// FindByID finds a sheet row by ID
func (r *GormProductionStatusRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionStatusRecord, error) {
	var model models.ProductionStatusModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySheet returns the sheet's rows ordered by name
func (r *GormProductionStatusRepository) FindBySheet(ctx context.Context, key production.SheetKey) ([]production.ProductionStatusRecord, error) {
	return r.findSheet(ctx, key.Date, key)
}

// LatestSheetBefore returns the rows of the latest earlier sheet for the same
// stage and process
func (r *GormProductionStatusRepository) LatestSheetBefore(ctx context.Context, key production.SheetKey) ([]production.ProductionStatusRecord, error) {
	var latest models.ProductionStatusModel
	err := r.db.WithContext(ctx).
		Where("process_stage = ? AND process = ? AND date < ?", string(key.Stage), key.Process, key.Date).
		Order("date DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.findSheet(ctx, latest.Date, key)
}

func (r *GormProductionStatusRepository) findSheet(ctx context.Context, date time.Time, key production.SheetKey) ([]production.ProductionStatusRecord, error) {
	var rows []models.ProductionStatusModel
	if err := r.db.WithContext(ctx).
		Where("date = ? AND process_stage = ? AND process = ?", date, string(key.Stage), key.Process).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]production.ProductionStatusRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// Save inserts or updates a sheet row
func (r *GormProductionStatusRepository) Save(ctx context.Context, record *production.ProductionStatusRecord) error {
	return r.db.WithContext(ctx).Save(models.ProductionStatusModelFromDomain(record)).Error
}

// SaveBatch upserts all rows in one transaction
func (r *GormProductionStatusRepository) SaveBatch(ctx context.Context, records []*production.ProductionStatusRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			if err := tx.Save(models.ProductionStatusModelFromDomain(record)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormProductionStatusRepository implements ProductionStatusRepository
var _ production.ProductionStatusRepository = (*GormProductionStatusRepository)(nil)
