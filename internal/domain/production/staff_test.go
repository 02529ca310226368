package production

import (
	"testing"

	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStaff(t *testing.T) {
	t.Run("creates active staff", func(t *testing.T) {
		s, err := NewStaff(StaffDetails{
			Name:       " John Doe ",
			StaffCode:  "EMP001",
			BloodGroup: "o+",
			Email:      "john@spicemill.example",
			Aadhaar:    "1234 5678 9012",
		})

		require.NoError(t, err)
		assert.Equal(t, "John Doe", s.Name)
		assert.Equal(t, "O+", s.BloodGroup)
		assert.Equal(t, "123456789012", s.Aadhaar)
		assert.True(t, s.IsActive())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewStaff(StaffDetails{Name: "  "})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		_, err := NewStaff(StaffDetails{Name: "Jane Smith", Email: "jane"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects malformed aadhaar", func(t *testing.T) {
		for _, a := range []string{"12345", "1234567890AB"} {
			_, err := NewStaff(StaffDetails{Name: "Jane Smith", Aadhaar: a})
			assert.ErrorIs(t, err, shared.ErrInvalidInput, a)
		}
	})

	t.Run("inactive staff", func(t *testing.T) {
		s, err := NewStaff(StaffDetails{Name: "Jane Smith", Status: StaffStatusInactive})
		require.NoError(t, err)
		assert.False(t, s.IsActive())

		_, err = NewStaff(StaffDetails{Name: "Jane Smith", Status: "on-leave"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
