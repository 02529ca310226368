package stock

import (
	"context"

	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/production"
	"github.com/spicemill/stockledger/internal/domain/purchasing"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories that
// stock propagation touches. Everything done inside Execute commits or rolls
// back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction
type TransactionalRepositories interface {
	StockStatusRepo() stock.StockStatusRepository
	MaterialRepo() material.RawMaterialRepository
	PurchaseRepo() purchasing.StockPurchaseRepository
	TaskRepo() production.TaskRepository
}

// NoOpTransactionScope runs the function against plain repositories without a
// transaction. Used in tests.
type NoOpTransactionScope struct {
	stockStatusRepo stock.StockStatusRepository
	materialRepo    material.RawMaterialRepository
	purchaseRepo    purchasing.StockPurchaseRepository
	taskRepo        production.TaskRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	stockStatusRepo stock.StockStatusRepository,
	materialRepo material.RawMaterialRepository,
	purchaseRepo purchasing.StockPurchaseRepository,
	taskRepo production.TaskRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockStatusRepo: stockStatusRepo,
		materialRepo:    materialRepo,
		purchaseRepo:    purchaseRepo,
		taskRepo:        taskRepo,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockStatusRepo returns the stock status repository
func (s *NoOpTransactionScope) StockStatusRepo() stock.StockStatusRepository { return s.stockStatusRepo }

// MaterialRepo returns the raw material repository
func (s *NoOpTransactionScope) MaterialRepo() material.RawMaterialRepository { return s.materialRepo }

// PurchaseRepo returns the stock purchase repository
func (s *NoOpTransactionScope) PurchaseRepo() purchasing.StockPurchaseRepository { return s.purchaseRepo }

// TaskRepo returns the task repository
func (s *NoOpTransactionScope) TaskRepo() production.TaskRepository { return s.taskRepo }
