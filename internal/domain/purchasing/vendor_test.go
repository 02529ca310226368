package purchasing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVendor(t *testing.T) {
	t.Run("creates active vendor", func(t *testing.T) {
		v, err := NewVendor(VendorDetails{
			Name:          "Organic Farms Inc.",
			ContactPerson: "Asha",
			Email:         "orders@organicfarms.example",
			GSTIN:         "29abcde1234f1z5",
		})

		require.NoError(t, err)
		assert.Equal(t, VendorStatusActive, v.Status)
		assert.Equal(t, "29ABCDE1234F1Z5", v.GSTIN)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		_, err := NewVendor(VendorDetails{Name: "Spice World", Email: "not-an-email"})
		require.Error(t, err)
	})

	t.Run("rejects short gstin", func(t *testing.T) {
		_, err := NewVendor(VendorDetails{Name: "Spice World", GSTIN: "29ABC"})
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewVendor(VendorDetails{})
		require.Error(t, err)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewVendor(VendorDetails{Name: "Spice World", Status: "archived"})
		require.Error(t, err)
	})
}
