package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	calls map[string]int
	fails int
}

func (o *recordingObserver) ObservePropagation(eventType string, err error, _ time.Duration) {
	if o.calls == nil {
		o.calls = make(map[string]int)
	}
	o.calls[eventType]++
	if err != nil {
		o.fails++
	}
}

func movement(m stock.MaterialRef, qty string, date time.Time) stock.Movement {
	return stock.Movement{Material: m, Quantity: d(qty), Date: date}
}

func refOf(name string, id uuid.UUID) stock.MaterialRef {
	return stock.MaterialRef{ID: id, Name: name}
}

var march = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestPropagator_ReceiveWithoutPriorRecord(t *testing.T) {
	ctx := context.Background()
	turmeric := newMaterial("Turmeric", "5")
	f := newFixture(turmeric)
	p := NewPropagator(f.scope, nil, nil)

	require.NoError(t, p.OnPurchaseReceived(ctx, movement(refOf("Turmeric", turmeric.ID), "20", march)))

	rec, err := f.stockRepo.FindByNameAndPeriod(ctx, "Turmeric", stock.Period{Year: 2024, Month: time.March})
	require.NoError(t, err)
	assert.True(t, rec.OpeningBalance.IsZero())
	assert.Equal(t, "20", rec.PurchasedQty.String())
	assert.Equal(t, "20", rec.ClosingBalance.String())
	assert.Equal(t, stock.StatusNormal, rec.Status)

	m, err := f.materialRepo.FindByID(ctx, turmeric.ID)
	require.NoError(t, err)
	assert.Equal(t, "20", m.CurrentStock.String())
	require.NotNil(t, m.LastPurchaseDate)
	assert.True(t, m.LastPurchaseDate.Equal(march))
}

func TestPropagator_ReceiveSeedsOpeningFromPreviousPeriod(t *testing.T) {
	ctx := context.Background()
	cumin := newMaterial("Cumin", "5")
	f := newFixture(cumin)

	feb, err := stock.NewStockStatusRecord(stock.Period{Year: 2024, Month: time.February}, "Cumin", "Spices", d("40"), d("5"), nil)
	require.NoError(t, err)
	feb.AddPurchased(d("2.5"))
	f.stockRepo.put(feb)

	p := NewPropagator(f.scope, nil, nil)
	require.NoError(t, p.OnPurchaseReceived(ctx, movement(refOf("Cumin", uuid.Nil), "10", march)))

	rec, err := f.stockRepo.FindByNameAndPeriod(ctx, "Cumin", stock.Period{Year: 2024, Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, "42.50", rec.OpeningBalance.StringFixed(2))
	assert.Equal(t, "52.50", rec.ClosingBalance.StringFixed(2))
}

func TestPropagator_ReceiveUnreceiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	pepper := newMaterial("Pepper", "5")
	f := newFixture(pepper)
	period := stock.Period{Year: 2024, Month: time.March}

	seed, err := stock.NewStockStatusRecord(period, "Pepper", "Spices", d("10"), d("5"), nil)
	require.NoError(t, err)
	seed.AddPurchased(d("3"))
	seed.AddUtilised(d("1"))
	f.stockRepo.put(seed)

	p := NewPropagator(f.scope, nil, nil)
	mv := movement(refOf("Pepper", pepper.ID), "7.25", march)
	require.NoError(t, p.OnPurchaseReceived(ctx, mv))
	require.NoError(t, p.OnPurchaseUnreceived(ctx, mv))

	rec, err := f.stockRepo.FindByID(ctx, seed.ID)
	require.NoError(t, err)
	assert.True(t, rec.PurchasedQty.Equal(d("3")))
	assert.True(t, rec.ClosingBalance.Equal(seed.ClosingBalance))
	assert.Equal(t, seed.Status, rec.Status)
}

func TestPropagator_UnreceiveDoesNotClampPurchased(t *testing.T) {
	ctx := context.Background()
	clove := newMaterial("Clove", "0")
	f := newFixture(clove)
	p := NewPropagator(f.scope, nil, nil)

	require.NoError(t, p.OnPurchaseUnreceived(ctx, movement(refOf("Clove", clove.ID), "4", march)))

	rec, err := f.stockRepo.FindByNameAndPeriod(ctx, "Clove", stock.PeriodOf(march))
	require.NoError(t, err)
	assert.Equal(t, "-4", rec.PurchasedQty.String())

	m, err := f.materialRepo.FindByID(ctx, clove.ID)
	require.NoError(t, err)
	assert.True(t, m.CurrentStock.IsZero())
}

func TestPropagator_EditMovesQuantityBetweenMaterials(t *testing.T) {
	ctx := context.Background()
	a := newMaterial("Coriander", "5")
	b := newMaterial("Fennel", "5")
	f := newFixture(a, b)
	p := NewPropagator(f.scope, nil, nil)

	old := movement(refOf("Coriander", a.ID), "12", march)
	require.NoError(t, p.OnPurchaseReceived(ctx, old))

	updated := movement(refOf("Fennel", b.ID), "8", march.AddDate(0, 1, 0))
	require.NoError(t, p.OnPurchaseEdited(ctx, old, updated))

	recA, err := f.stockRepo.FindByNameAndPeriod(ctx, "Coriander", stock.PeriodOf(march))
	require.NoError(t, err)
	assert.True(t, recA.PurchasedQty.IsZero())

	recB, err := f.stockRepo.FindByNameAndPeriod(ctx, "Fennel", stock.PeriodOf(updated.Date))
	require.NoError(t, err)
	assert.Equal(t, "8", recB.PurchasedQty.String())
}

func TestPropagator_EditFailureLeavesStorageAndRegistryUntouched(t *testing.T) {
	ctx := context.Background()
	a := newMaterial("Coriander", "5")
	f := newFixture(a)
	registry := NewRegistry(f.stockRepo, nil, nil)
	p := NewPropagator(f.scope, nil, nil)
	p.SetRegistry(registry)

	old := movement(refOf("Coriander", a.ID), "12", march)
	require.NoError(t, p.OnPurchaseReceived(ctx, old))
	require.NoError(t, registry.Start(ctx, stock.PeriodOf(march)))

	missing := movement(refOf("Saffron", uuid.Nil), "1", march)
	err := p.OnPurchaseEdited(ctx, old, missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	rec, err := f.stockRepo.FindByNameAndPeriod(ctx, "Coriander", stock.PeriodOf(march))
	require.NoError(t, err)
	assert.Equal(t, "12", rec.PurchasedQty.String())

	cached, ok, err := registry.Lookup(ctx, "Coriander")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "12", cached.PurchasedQty.String())

	m, err := f.materialRepo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "12", m.CurrentStock.String())
}

func TestPropagator_UnknownMaterialIsNotFound(t *testing.T) {
	f := newFixture()
	p := NewPropagator(f.scope, nil, nil)

	err := p.OnTaskUtilised(context.Background(), movement(refOf("Ghost", uuid.New()), "1", march))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
}

func TestPropagator_SaveFailureIsPropagationFailed(t *testing.T) {
	ctx := context.Background()
	m := newMaterial("Ajwain", "1")
	f := newFixture(m)
	f.stockRepo.failSave = true
	obs := &recordingObserver{}
	p := NewPropagator(f.scope, nil, nil)
	p.SetObserver(obs)

	err := p.OnPurchaseReceived(ctx, movement(refOf("Ajwain", m.ID), "1", march))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPropagationFailed)
	assert.ErrorIs(t, err, errStorage)
	assert.Equal(t, 1, obs.fails)
	assert.Equal(t, 1, obs.calls[stock.EventTypePurchaseReceived])
}

func TestPropagator_TaskUtilisedUpdatesRegistry(t *testing.T) {
	ctx := context.Background()
	m := newMaterial("Chilli", "5")
	f := newFixture(m)
	period := stock.PeriodOf(march)

	seed, err := stock.NewStockStatusRecord(period, "Chilli", "Spices", d("10"), d("5"), nil)
	require.NoError(t, err)
	f.stockRepo.put(seed)

	registry := NewRegistry(f.stockRepo, nil, nil)
	require.NoError(t, registry.Start(ctx, period))
	p := NewPropagator(f.scope, nil, nil)
	p.SetRegistry(registry)

	require.NoError(t, p.OnTaskUtilised(ctx, movement(refOf("Chilli", m.ID), "6", march)))

	cached, ok, err := registry.Lookup(ctx, "Chilli")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "4", cached.ClosingBalance.String())
	assert.Equal(t, stock.StatusLowStock, cached.Status)
}

func TestPropagator_IgnoresForeignEvents(t *testing.T) {
	f := newFixture()
	p := NewPropagator(f.scope, nil, nil)
	ev := shared.NewBaseDomainEvent("SomethingElse", "Other", uuid.New())

	require.NoError(t, p.Propagate(context.Background(), &ev))
	assert.ElementsMatch(t, stock.PropagationEventTypes(), p.EventTypes())
}

func TestPropagator_HandleInsideUnitDefersRegistry(t *testing.T) {
	ctx := context.Background()
	m := newMaterial("Cardamom", "2")
	f := newFixture(m)
	period := stock.PeriodOf(march)
	seedRecord(t, f.stockRepo, period, "Cardamom", "1")

	registry := NewRegistry(f.stockRepo, nil, nil)
	require.NoError(t, registry.Start(ctx, period))
	p := NewPropagator(f.scope, nil, nil)
	p.SetRegistry(registry)

	var unit *Unit
	err := f.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txCtx, u := BeginUnit(ctx, repos)
		unit = u
		return p.Handle(txCtx, stock.NewPurchaseReceivedEvent(uuid.New(), movement(refOf("Cardamom", m.ID), "3", march)))
	})
	require.NoError(t, err)
	require.Len(t, unit.Changes(), 1)

	cached, _, err := registry.Lookup(ctx, "Cardamom")
	require.NoError(t, err)
	assert.Equal(t, "1", cached.ClosingBalance.String())

	unit.Committed(ctx)
	cached, _, err = registry.Lookup(ctx, "Cardamom")
	require.NoError(t, err)
	assert.Equal(t, "4", cached.ClosingBalance.String())
	assert.Empty(t, unit.Changes())
}
