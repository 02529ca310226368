package material_test

import (
	"context"
	"testing"

	materialapp "github.com/spicemill/stockledger/internal/application/material"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewStack(t, testutil.March2024).Materials

	created, err := svc.Create(ctx, materialapp.MaterialRequest{
		Code: "RM-001", Name: " Cumin ", Category: "Seeds", Unit: "kg", MinStockLevel: testutil.Dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cumin", created.Name)
	assert.True(t, created.CurrentStock.IsZero())

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "RM-001", got.Code)
	assert.True(t, testutil.Dec("10").Equal(got.MinStockLevel))

	updated, err := svc.Update(ctx, created.ID, materialapp.MaterialRequest{
		Code: "RM-001", Name: "Cumin", Category: "Whole Seeds", Unit: "kg", MinStockLevel: testutil.Dec("15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Whole Seeds", updated.Category)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMaterialService_UniqueNames(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewStack(t, testutil.March2024).Materials

	_, err := svc.Create(ctx, materialapp.MaterialRequest{Name: "Cumin"})
	require.NoError(t, err)
	pepper, err := svc.Create(ctx, materialapp.MaterialRequest{Name: "Pepper"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, materialapp.MaterialRequest{Name: "Cumin"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = svc.Update(ctx, pepper.ID, materialapp.MaterialRequest{Name: "Cumin"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestMaterialService_List(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewStack(t, testutil.March2024).Materials
	for _, name := range []string{"Pepper", "Cumin", "Black Cumin"} {
		_, err := svc.Create(ctx, materialapp.MaterialRequest{Name: name})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, materialapp.MaterialListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Black Cumin", all[0].Name)

	cumins, err := svc.List(ctx, materialapp.MaterialListFilter{Search: "cumin"})
	require.NoError(t, err)
	assert.Len(t, cumins, 2)

	desc, err := svc.List(ctx, materialapp.MaterialListFilter{OrderBy: "name", OrderDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Pepper", desc[0].Name)

	page, err := svc.List(ctx, materialapp.MaterialListFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Pepper", page[0].Name)
}

func TestMaterialService_NegativeMinimumRejected(t *testing.T) {
	svc := testutil.NewStack(t, testutil.March2024).Materials
	_, err := svc.Create(context.Background(), materialapp.MaterialRequest{Name: "Clove", MinStockLevel: testutil.Dec("-1")})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
