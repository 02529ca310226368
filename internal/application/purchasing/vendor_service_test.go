package purchasing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/spicemill/stockledger/internal/application/purchasing"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewStack(t, testutil.March2024).Vendors

	created, err := svc.Create(ctx, purchasing.VendorRequest{
		Name:          "Malabar Exports",
		ContactPerson: "R. Menon",
		GSTIN:         "32AAAAA0000A1Z5",
	})
	require.NoError(t, err)
	assert.Equal(t, "active", created.Status)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "R. Menon", got.ContactPerson)

	updated, err := svc.Update(ctx, created.ID, purchasing.VendorRequest{Name: "Malabar Exports", Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "inactive", updated.Status)
	assert.Empty(t, updated.ContactPerson)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestVendorService_List(t *testing.T) {
	ctx := context.Background()
	svc := testutil.NewStack(t, testutil.March2024).Vendors
	for _, name := range []string{"Kerala Spice Traders", "Malabar Exports"} {
		_, err := svc.Create(ctx, purchasing.VendorRequest{Name: name})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, purchasing.VendorListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.List(ctx, purchasing.VendorListFilter{Search: "malabar"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Malabar Exports", found[0].Name)
}

func TestVendorService_Unknown(t *testing.T) {
	svc := testutil.NewStack(t, testutil.March2024).Vendors
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
