package testutil

import (
	"context"
	"testing"
	"time"

	materialapp "github.com/spicemill/stockledger/internal/application/material"
	"github.com/spicemill/stockledger/internal/application/production"
	"github.com/spicemill/stockledger/internal/application/purchasing"
	stockapp "github.com/spicemill/stockledger/internal/application/stock"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/spicemill/stockledger/internal/infrastructure/cache"
	"github.com/spicemill/stockledger/internal/infrastructure/event"
	"github.com/spicemill/stockledger/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stack is the service graph of the server wired against sqlite and
// in-memory stores.
type Stack struct {
	DB         *gorm.DB
	Policies   *stock.PolicyRegistry
	Registry   *stockapp.Registry
	Bus        *event.InMemoryEventBus
	Propagator *stockapp.Propagator

	Materials        *materialapp.MaterialService
	Imports          *materialapp.ImportService
	Vendors          *purchasing.VendorService
	Purchases        *purchasing.PurchaseService
	Staff            *production.StaffService
	Tasks            *production.TaskService
	StockStatus      *stockapp.StockStatusService
	ProductionStatus *production.ProductionStatusService
}

// NewStack wires every service against a fresh sqlite database. The
// registry is started on period.
func NewStack(t *testing.T, period stock.Period) *Stack {
	t.Helper()
	return NewStackOn(t, NewSQLiteDatabase(t).DB, period)
}

// NewStackOn wires every service against db, which must already hold the schema
func NewStackOn(t *testing.T, db *gorm.DB, period stock.Period) *Stack {
	t.Helper()
	logger := zap.NewNop()

	materials := persistence.NewGormRawMaterialRepository(db)
	vendors := persistence.NewGormVendorRepository(db)
	purchases := persistence.NewGormStockPurchaseRepository(db)
	tasks := persistence.NewGormTaskRepository(db)
	staff := persistence.NewGormStaffRepository(db)
	records := persistence.NewGormStockStatusRepository(db)
	sheets := persistence.NewGormProductionStatusRepository(db)
	scope := persistence.NewGormTransactionScope(db)

	policies := stock.NewPolicyRegistry()
	registry := stockapp.NewRegistry(records, stockapp.NewMemorySnapshotStore(), logger)

	propagator := stockapp.NewPropagator(scope, policies.Default(), logger)
	propagator.SetRegistry(registry)

	idempotency := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idempotency.Close() })

	bus := event.NewInMemoryEventBus(logger)
	bus.Subscribe(event.NewIdempotentHandler(propagator, idempotency, logger))

	stockStatus := stockapp.NewStockStatusService(scope, records, materials, policies, logger)
	stockStatus.SetRegistry(registry)

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, registry.Start(ctx, period))
	t.Cleanup(func() {
		_ = registry.Stop(context.Background())
		_ = bus.Stop(context.Background())
	})

	return &Stack{
		DB:          db,
		Policies:    policies,
		Registry:    registry,
		Bus:         bus,
		Propagator:  propagator,
		Materials:        materialapp.NewMaterialService(materials),
		Imports:          materialapp.NewImportService(materials, logger),
		Vendors:          purchasing.NewVendorService(vendors),
		Purchases:        purchasing.NewPurchaseService(scope, purchases, vendors, materials, bus, logger),
		Staff:            production.NewStaffService(staff),
		Tasks:            production.NewTaskService(scope, tasks, materials, staff, bus, time.UTC, logger),
		StockStatus:      stockStatus,
		ProductionStatus: production.NewProductionStatusService(sheets, policies, logger),
	}
}
