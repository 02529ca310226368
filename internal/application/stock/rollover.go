package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/material"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
)

// getOrSeed returns the material's record for period, creating and persisting
// it when absent. A new record opens with the closing balance the material had
// on the last day of the previous period, or zero.
func getOrSeed(
	ctx context.Context,
	records stock.StockStatusRepository,
	m *material.RawMaterial,
	period stock.Period,
	policy stock.ClassificationPolicy,
) (*stock.StockStatusRecord, bool, error) {
	rec, err := records.FindByNameAndPeriod(ctx, m.Name, period)
	if err == nil {
		rec.ApplyPolicy(policy)
		return rec, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, shared.FetchFailed("stock status", err)
	}

	opening, err := previousClosing(ctx, records, m.Name, period)
	if err != nil {
		return nil, false, err
	}

	rec, err = stock.NewStockStatusRecord(period, m.Name, m.Category, opening, m.MinStockLevel, policy)
	if err != nil {
		return nil, false, err
	}
	if err := records.Save(ctx, rec); err != nil {
		return nil, false, shared.SaveFailed(fmt.Sprintf("seeded stock status for %s %s", m.Name, period), err)
	}
	return rec, true, nil
}

// previousClosing looks up the closing balance carried into period
func previousClosing(ctx context.Context, records stock.StockStatusRepository, name string, period stock.Period) (decimal.Decimal, error) {
	previous := stock.PeriodOf(stock.PreviousPeriodLastDay(period.Start()))
	prev, err := records.FindByNameAndPeriod(ctx, name, previous)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, shared.FetchFailed("previous stock status", err)
	}
	prev.Recompute()
	return prev.ClosingBalance, nil
}

// resolveMaterial finds the master record a movement refers to
func resolveMaterial(ctx context.Context, materials material.RawMaterialRepository, ref stock.MaterialRef) (*material.RawMaterial, error) {
	var (
		m   *material.RawMaterial
		err error
	)
	if ref.ID != uuid.Nil {
		m, err = materials.FindByID(ctx, ref.ID)
	} else {
		m, err = materials.FindByName(ctx, ref.Name)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.WrapDomainError(shared.CodeNotFound,
				fmt.Sprintf("material %q has no master record", ref.Name), err)
		}
		return nil, shared.FetchFailed("material", err)
	}
	return m, nil
}
