package production_test

import (
	"context"
	"testing"

	"github.com/spicemill/stockledger/internal/application/production"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffService_CRUD(t *testing.T) {
	ctx := context.Background()
	stack := testutil.NewStack(t, testutil.March2024)

	ravi, err := stack.Staff.Create(ctx, production.StaffRequest{Name: " Ravi ", StaffCode: "S-07", Email: "ravi@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", ravi.Name)
	assert.Equal(t, "active", ravi.Status)

	_, err = stack.Staff.Create(ctx, production.StaffRequest{Name: "Ravi"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	meena, err := stack.Staff.Create(ctx, production.StaffRequest{Name: "Meena", Status: "inactive"})
	require.NoError(t, err)

	_, err = stack.Staff.Update(ctx, meena.ID, production.StaffRequest{Name: "Ravi"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	updated, err := stack.Staff.Update(ctx, ravi.ID, production.StaffRequest{Name: "Ravi", Phone: "98450 00000"})
	require.NoError(t, err)
	assert.Equal(t, "98450 00000", updated.Phone)

	active, err := stack.Staff.List(ctx, production.StaffListFilter{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ravi", active[0].Name)

	require.NoError(t, stack.Staff.Delete(ctx, meena.ID))
	_, err = stack.Staff.GetByID(ctx, meena.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTaskService_StaffAssignment(t *testing.T) {
	ctx := context.Background()
	stack, id := seed(t)

	ravi, err := stack.Staff.Create(ctx, production.StaffRequest{Name: "Ravi"})
	require.NoError(t, err)
	meena, err := stack.Staff.Create(ctx, production.StaffRequest{Name: "Meena"})
	require.NoError(t, err)

	byName, err := stack.Tasks.Create(ctx, production.TaskRequest{MaterialID: &id, Process: "Grinding", QtyAssigned: testutil.Dec("1"), StaffName: "Ravi"})
	require.NoError(t, err)
	require.NotNil(t, byName.StaffID)
	assert.Equal(t, ravi.ID, *byName.StaffID)

	byID, err := stack.Tasks.Create(ctx, production.TaskRequest{MaterialID: &id, Process: "Grinding", QtyAssigned: testutil.Dec("1"), StaffID: &meena.ID})
	require.NoError(t, err)
	assert.Equal(t, "Meena", byID.StaffName)

	unassigned, err := stack.Tasks.Create(ctx, production.TaskRequest{MaterialID: &id, Process: "Grinding", QtyAssigned: testutil.Dec("1")})
	require.NoError(t, err)
	assert.Nil(t, unassigned.StaffID)

	_, err = stack.Tasks.Create(ctx, production.TaskRequest{MaterialID: &id, Process: "Grinding", QtyAssigned: testutil.Dec("1"), StaffName: "Gopal"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	t.Run("inactive staff keep their tasks but take no new ones", func(t *testing.T) {
		_, err := stack.Staff.Update(ctx, ravi.ID, production.StaffRequest{Name: "Ravi", Status: "inactive"})
		require.NoError(t, err)

		_, err = stack.Tasks.Create(ctx, production.TaskRequest{MaterialID: &id, Process: "Sieving", QtyAssigned: testutil.Dec("1"), StaffName: "Ravi"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		kept, err := stack.Tasks.Update(ctx, byName.ID, production.TaskRequest{MaterialID: &id, Process: "Sieving", QtyAssigned: testutil.Dec("2"), StaffID: &ravi.ID})
		require.NoError(t, err)
		assert.Equal(t, "Ravi", kept.StaffName)

		_, err = stack.Tasks.Update(ctx, byID.ID, production.TaskRequest{MaterialID: &id, Process: "Sieving", QtyAssigned: testutil.Dec("2"), StaffName: "Ravi"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}
