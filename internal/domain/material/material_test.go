package material

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawMaterial(t *testing.T) {
	t.Run("creates material", func(t *testing.T) {
		m, err := NewRawMaterial("RM-01", " Red Chilli ", "Whole Spices", "", decimal.NewFromInt(25))

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, m.ID)
		assert.Equal(t, "Red Chilli", m.Name)
		assert.Equal(t, "kg", m.Unit)
		assert.True(t, m.CurrentStock.IsZero())
		assert.Nil(t, m.LastPurchaseDate)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		m, err := NewRawMaterial("RM-01", "", "Whole Spices", "kg", decimal.Zero)
		require.Error(t, err)
		assert.Nil(t, m)
	})

	t.Run("fails with negative minimum", func(t *testing.T) {
		_, err := NewRawMaterial("RM-01", "Cloves", "Whole Spices", "kg", decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Minimum")
	})

	t.Run("fails with minimum finer than four places", func(t *testing.T) {
		_, err := NewRawMaterial("RM-01", "Cloves", "Whole Spices", "kg", decimal.RequireFromString("2.00001"))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestRawMaterial_AdjustCurrentStock(t *testing.T) {
	t.Run("addition stamps purchase date", func(t *testing.T) {
		m, err := NewRawMaterial("", "Cardamom", "", "kg", decimal.Zero)
		require.NoError(t, err)
		date := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

		m.AdjustCurrentStock(decimal.NewFromInt(50), true, &date)

		assert.Equal(t, "50", m.CurrentStock.String())
		require.NotNil(t, m.LastPurchaseDate)
		assert.True(t, date.Equal(*m.LastPurchaseDate))
	})

	t.Run("removal clamps at zero", func(t *testing.T) {
		m, err := NewRawMaterial("", "Cardamom", "", "kg", decimal.Zero)
		require.NoError(t, err)
		m.AdjustCurrentStock(decimal.NewFromInt(10), true, nil)

		m.AdjustCurrentStock(decimal.NewFromInt(30), false, nil)

		assert.True(t, m.CurrentStock.IsZero())
	})
}
