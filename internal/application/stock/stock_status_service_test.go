package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(f *fixture) *StockStatusService {
	return NewStockStatusService(f.scope, f.stockRepo, f.materialRepo, nil, nil)
}

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func TestStockStatusService_ListSeedsPeriodWithRollover(t *testing.T) {
	ctx := context.Background()
	cumin := newMaterial("Cumin", "5")
	pepper := newMaterial("Pepper", "5")
	f := newFixture(cumin, pepper)
	march := stock.Period{Year: 2024, Month: time.March}

	feb, err := stock.NewStockStatusRecord(march.Previous(), "Cumin", "Spices", d("40"), d("5"), nil)
	require.NoError(t, err)
	feb.AddPurchased(d("2.50"))
	f.stockRepo.put(feb)

	svc := newService(f)
	resp, err := svc.List(ctx, march, "")
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.TotalItems)
	assert.Equal(t, stock.PolicyTwoTier, resp.Policy)
	assert.Equal(t, "Cumin", resp.Items[0].Name)
	assert.Equal(t, "42.50", resp.Items[0].OpeningBal)
	assert.Equal(t, "Pepper", resp.Items[1].Name)
	assert.Equal(t, "0.00", resp.Items[1].OpeningBal)
	assert.Equal(t, stock.StatusOutOfStock.String(), resp.Items[1].Status)
	assert.Equal(t, 1, resp.NormalCount)
	assert.Equal(t, 1, resp.OutOfStockCount)

	created, err := svc.SeedPeriod(ctx, march)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestStockStatusService_ListUnknownPolicy(t *testing.T) {
	svc := newService(newFixture())
	_, err := svc.List(context.Background(), stock.Period{Year: 2024, Month: time.March}, "five_tier")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStockStatusService_ListFetchFailure(t *testing.T) {
	f := newFixture()
	f.stockRepo.failFind = true
	svc := newService(f)

	_, err := svc.List(context.Background(), stock.Period{Year: 2024, Month: time.March}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrFetchFailed)
}

func TestStockStatusService_SaveBatchClassifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newService(f)
	march := stock.Period{Year: 2024, Month: time.March}

	tests := []struct {
		name    string
		adj     string
		closing string
		status  stock.Status
	}{
		{"Cumin", "0", "13.00", stock.StatusNormal},
		{"Fennel", "-9", "4.00", stock.StatusLowStock},
		{"Pepper", "-14", "-1.00", stock.StatusOutOfStock},
	}

	items := make([]SaveStockStatusItem, len(tests))
	for i, tt := range tests {
		items[i] = SaveStockStatusItem{
			Name:       tt.name,
			Category:   "Spices",
			OpeningBal: d("10"),
			Purchases:  d("5"),
			Utilised:   d("2"),
			AdjPlus:    d(tt.adj),
			MinLevel:   d("5"),
		}
	}

	out, err := svc.SaveBatch(ctx, march, items)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, out[i].Name)
			assert.Equal(t, tt.closing, out[i].ClosingBal)
			assert.Equal(t, tt.status.String(), out[i].Status)
		})
	}

	stored, err := f.stockRepo.FindByPeriod(ctx, march)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestStockStatusService_SaveBatchUpdatesExistingRows(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	march := stock.Period{Year: 2024, Month: time.March}
	existing := seedRecord(t, f.stockRepo, march, "Cumin", "10")
	svc := newService(f)

	id := existing.ID
	out, err := svc.SaveBatch(ctx, march, []SaveStockStatusItem{{
		ID: &id, Name: "Cumin", OpeningBal: d("10"), Purchases: d("1"), Utilised: d("0"), AdjPlus: d("0"), MinLevel: d("5"),
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, id, out[0].ID)

	stored, err := f.stockRepo.FindByPeriod(ctx, march)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "11", stored[0].ClosingBalance.String())
}

func TestStockStatusService_SaveBatchFailureLeavesRegistry(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	march := stock.Period{Year: 2024, Month: time.March}
	seedRecord(t, f.stockRepo, march, "Cumin", "10")

	registry := NewRegistry(f.stockRepo, nil, nil)
	require.NoError(t, registry.Start(ctx, march))
	svc := newService(f)
	svc.SetRegistry(registry)
	f.stockRepo.failSave = true

	_, err := svc.SaveBatch(ctx, march, []SaveStockStatusItem{{
		Name: "Cumin", OpeningBal: d("99"), MinLevel: d("5"),
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrSaveFailed)

	cached, ok, err := registry.Lookup(ctx, "Cumin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "10", cached.OpeningBalance.String())
}

func TestStockStatusService_SaveBatchRejectsInvalidRows(t *testing.T) {
	f := newFixture()
	svc := newService(f)
	march := stock.Period{Year: 2024, Month: time.March}

	_, err := svc.SaveBatch(context.Background(), march, []SaveStockStatusItem{
		{Name: "Cumin", MinLevel: d("5")},
		{Name: "Pepper", MinLevel: d("-1")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	stored, err := f.stockRepo.FindByPeriod(context.Background(), march)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStockStatusService_SaveBatchRejectsFinerThanFourPlaces(t *testing.T) {
	f := newFixture()
	svc := newService(f)
	march := stock.Period{Year: 2024, Month: time.March}

	_, err := svc.SaveBatch(context.Background(), march, []SaveStockStatusItem{
		{Name: "Cumin", OpeningBal: d("1"), Purchases: d("0.00005"), MinLevel: d("5")},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	out, err := svc.SaveBatch(context.Background(), march, []SaveStockStatusItem{
		{Name: "Cumin", OpeningBal: d("1"), Purchases: d("0.0001"), MinLevel: d("5")},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1.00", out[0].ClosingBal)
}

func TestStockStatusService_SaveBatchRejectsRowOfAnotherPeriod(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	march := stock.Period{Year: 2024, Month: time.March}
	february := seedRecord(t, f.stockRepo, march.Previous(), "Cumin", "10")
	svc := newService(f)

	id := february.ID
	_, err := svc.SaveBatch(ctx, march, []SaveStockStatusItem{{
		ID: &id, Name: "Cumin", OpeningBal: d("99"), MinLevel: d("5"),
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Contains(t, err.Error(), "2024-02")

	_, err = svc.SaveBatch(ctx, march.Previous(), []SaveStockStatusItem{{
		ID: &id, Name: "Pepper", OpeningBal: d("99"), MinLevel: d("5"),
	}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	stored, err := f.stockRepo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10", stored.OpeningBalance.String())
}

func TestStockStatusService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	march := stock.Period{Year: 2024, Month: time.March}
	rec := seedRecord(t, f.stockRepo, march, "Cumin", "10")
	registry := NewRegistry(f.stockRepo, nil, nil)
	require.NoError(t, registry.Start(ctx, march))
	svc := newService(f)
	svc.SetRegistry(registry)

	resp, err := svc.Update(ctx, rec.ID, UpdateStockStatusRequest{AdjPlus: ptr(d("-7"))})
	require.NoError(t, err)
	assert.Equal(t, "3.00", resp.ClosingBal)
	assert.Equal(t, "-7.00", resp.AdjPlus)
	assert.Equal(t, stock.StatusLowStock.String(), resp.Status)

	cached, ok, err := registry.Lookup(ctx, "Cumin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", cached.ClosingBalance.String())

	_, err = svc.Update(ctx, uuid.New(), UpdateStockStatusRequest{})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Update(ctx, rec.ID, UpdateStockStatusRequest{MinLevel: ptr(d("-1"))})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Update(ctx, rec.ID, UpdateStockStatusRequest{OpeningBal: ptr(d("10.00005"))})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	cached, _, err = registry.Lookup(ctx, "Cumin")
	require.NoError(t, err)
	assert.Equal(t, "3", cached.ClosingBalance.String())
}

func TestStockStatusService_Recalculate(t *testing.T) {
	ctx := context.Background()
	cumin := newMaterial("Cumin", "5")
	pepper := newMaterial("Pepper", "5")
	f := newFixture(cumin, pepper)
	march := stock.Period{Year: 2024, Month: time.March}

	rec := seedRecord(t, f.stockRepo, march, "Cumin", "10")
	rec.AddPurchased(d("999"))
	f.stockRepo.put(rec)

	f.purchases.totals["Cumin"] = d("20")
	f.tasks.totals["Cumin"] = d("4.5")
	f.tasks.totals["Pepper"] = d("1")

	svc := newService(f)
	out, err := svc.Recalculate(ctx, march)
	require.NoError(t, err)
	require.Len(t, out, 2)

	byName := map[string]StockStatusResponse{}
	for _, r := range out {
		byName[r.Name] = r
	}
	assert.Equal(t, "20.00", byName["Cumin"].Purchases)
	assert.Equal(t, "25.50", byName["Cumin"].ClosingBal)
	assert.Equal(t, "-1.00", byName["Pepper"].ClosingBal)
	assert.Equal(t, stock.StatusOutOfStock.String(), byName["Pepper"].Status)
}

func TestStockStatusService_StatsUsesThreeTier(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	march := stock.Period{Year: 2024, Month: time.March}
	for _, tc := range []struct{ name, opening string }{
		{"Cumin", "20"}, {"Fennel", "4"}, {"Pepper", "1"}, {"Clove", "0"},
	} {
		seedRecord(t, f.stockRepo, march, tc.name, tc.opening)
	}

	svc := newService(f)
	stats, err := svc.Stats(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalItems)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, 2, stats.CriticalStock)

	summary, err := svc.Summary(ctx, march, stock.PolicyThreeTier)
	require.NoError(t, err)
	assert.Nil(t, summary.Items)
	assert.Equal(t, 1, summary.CriticalCount)
	assert.Equal(t, 1, summary.OutOfStockCount)
}

func TestStockStatusService_GetOrSeed(t *testing.T) {
	ctx := context.Background()
	cumin := newMaterial("Cumin", "5")
	f := newFixture(cumin)
	svc := newService(f)
	march := stock.Period{Year: 2024, Month: time.March}

	first, err := svc.GetOrSeed(ctx, cumin.ID, march)
	require.NoError(t, err)
	second, err := svc.GetOrSeed(ctx, cumin.ID, march)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.GetOrSeed(ctx, uuid.New(), march)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	got, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cumin", got.Name)
}
