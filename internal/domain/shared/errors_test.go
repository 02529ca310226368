package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := WrapDomainError(CodeNotFound, "material Turmeric not found", errors.New("record not found"))
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrSaveFailed))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("seeding: %w", SaveFailed("stock status", errors.New("disk full")))
		assert.True(t, errors.Is(err, ErrSaveFailed))
		assert.Equal(t, CodeSaveFailed, CodeOf(err))
	})

	t.Run("message includes cause", func(t *testing.T) {
		err := PropagationFailed("PurchaseReceived", errors.New("connection reset"))
		assert.Equal(t, "failed to propagate PurchaseReceived: connection reset", err.Error())
		assert.EqualError(t, errors.Unwrap(err), "connection reset")
	})

	t.Run("code of plain error is empty", func(t *testing.T) {
		assert.Empty(t, CodeOf(errors.New("boom")))
		assert.Equal(t, CodeFetchFailed, CodeOf(FetchFailed("materials", nil)))
	})
}
