package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod(t *testing.T) {
	t.Run("period of a date", func(t *testing.T) {
		p := PeriodOf(time.Date(2025, time.March, 17, 15, 4, 0, 0, time.UTC))
		assert.Equal(t, Period{Year: 2025, Month: time.March}, p)
		assert.Equal(t, "2025-03", p.String())
	})

	t.Run("bounds", func(t *testing.T) {
		p := Period{Year: 2024, Month: time.February}
		assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start())
		assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), p.LastDay())
	})

	t.Run("previous crosses year", func(t *testing.T) {
		p := Period{Year: 2025, Month: time.January}
		assert.Equal(t, Period{Year: 2024, Month: time.December}, p.Previous())
		assert.Equal(t, p, p.Previous().Next())
	})

	t.Run("previous period last day", func(t *testing.T) {
		got := PreviousPeriodLastDay(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), got)
		assert.Equal(t, Period{Year: 2025, Month: time.February}, PeriodOf(got))
	})

	t.Run("parse", func(t *testing.T) {
		p, err := ParsePeriod("2025-04")
		require.NoError(t, err)
		assert.Equal(t, Period{Year: 2025, Month: time.April}, p)

		p, err = ParsePeriod("2025-04-30")
		require.NoError(t, err)
		assert.Equal(t, Period{Year: 2025, Month: time.April}, p)

		_, err = ParsePeriod("April")
		assert.Error(t, err)
	})

	t.Run("contains", func(t *testing.T) {
		p := Period{Year: 2025, Month: time.May}
		assert.True(t, p.Contains(time.Date(2025, time.May, 31, 23, 0, 0, 0, time.UTC)))
		assert.False(t, p.Contains(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)))
	})
}
