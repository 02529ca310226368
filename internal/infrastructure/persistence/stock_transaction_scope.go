package persistence

import (
	"context"

	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos stockapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// StockStatusRepo returns the stock status repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockStatusRepo() stock.StockStatusRepository {
	return NewGormStockStatusRepository(r.tx)
}

// MaterialRepo returns the raw material repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MaterialRepo() material.RawMaterialRepository {
	return NewGormRawMaterialRepository(r.tx)
}

// PurchaseRepo returns the stock purchase repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PurchaseRepo() purchasing.StockPurchaseRepository {
	return NewGormStockPurchaseRepository(r.tx)
}

// TaskRepo returns the task repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TaskRepo() production.TaskRepository {
	return NewGormTaskRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ stockapp.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ stockapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
