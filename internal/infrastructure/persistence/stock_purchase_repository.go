package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// materialTotal is one row of a per-material quantity sum
type materialTotal struct {
	MaterialName string
	Total        decimal.Decimal
}

func totalsByName(rows []materialTotal) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.MaterialName] = row.Total
	}
	return totals
}

// GormStockPurchaseRepository implements StockPurchaseRepository using GORM
type GormStockPurchaseRepository struct {
	db *gorm.DB
}

// NewGormStockPurchaseRepository creates a new GormStockPurchaseRepository
func NewGormStockPurchaseRepository(db *gorm.DB) *GormStockPurchaseRepository {
	return &GormStockPurchaseRepository{db: db}
}

// FindByID finds a purchase by its ID
func (r *GormStockPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.StockPurchase, error) {
	var model models.StockPurchaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds purchases matching the filter, newest first by default
func (r *GormStockPurchaseRepository) FindAll(ctx context.Context, filter purchasing.PurchaseFilter) ([]purchasing.StockPurchase, error) {
	query := r.db.WithContext(ctx).Model(&models.StockPurchaseModel{})
	if filter.Period != nil {
		query = query.Where("purchase_date >= ? AND purchase_date < ?", filter.Period.Start(), filter.Period.Next().Start())
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}

	var rows []models.StockPurchaseModel
	query = applyPaging(query, filter.Filter, "material_name", PurchaseSortFields, "purchase_date DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	purchases := make([]purchasing.StockPurchase, len(rows))
	for i := range rows {
		purchases[i] = *rows[i].ToDomain()
	}
	return purchases, nil
}

// Save inserts or updates a purchase
func (r *GormStockPurchaseRepository) Save(ctx context.Context, p *purchasing.StockPurchase) error {
	return r.db.WithContext(ctx).Save(models.StockPurchaseModelFromDomain(p)).Error
}

// Delete deletes a purchase
func (r *GormStockPurchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StockPurchaseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReceivedTotalsByMaterial sums received quantities per material name in a period
func (r *GormStockPurchaseRepository) ReceivedTotalsByMaterial(ctx context.Context, period stock.Period) (map[string]decimal.Decimal, error) {
	var rows []materialTotal
	if err := r.db.WithContext(ctx).
		Model(&models.StockPurchaseModel{}).
		Select("material_name, SUM(quantity) AS total").
		Where("status = ? AND purchase_date >= ? AND purchase_date < ?",
			string(purchasing.PurchaseStatusReceived), period.Start(), period.Next().Start()).
		Group("material_name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return totalsByName(rows), nil
}

// Ensure GormStockPurchaseRepository implements StockPurchaseRepository
var _ purchasing.StockPurchaseRepository = (*GormStockPurchaseRepository)(nil)
