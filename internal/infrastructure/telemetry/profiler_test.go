package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/spicemill/stockledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.ProfilingConfig{}, "stockledger", nil)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_InvalidConfig(t *testing.T) {
	_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, "stockledger", nil)
	assert.Error(t, err)

	_, err = NewProfiler(config.ProfilingConfig{
		Enabled:       true,
		ServerAddress: "http://localhost:4040",
		ProfileTypes:  []string{"cpu", "heap"},
	}, "stockledger", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heap")
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes([]string{"cpu", "mutex"})
	require.NoError(t, err)
	assert.Len(t, types, 3)
}

func TestWithProfilingLabels(t *testing.T) {
	long := strings.Repeat("x", maxLabelValueLength+10)

	var got map[string]string
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelRoute:     "/api/v1/stock-status",
		ProfilingLabelOperation: long,
		ProfilingLabelMethod:    "",
	}, func(ctx context.Context) {
		got = map[string]string{}
		pprof.ForLabels(ctx, func(key, value string) bool {
			got[key] = value
			return true
		})
	})

	assert.Equal(t, "/api/v1/stock-status", got[ProfilingLabelRoute])
	assert.Len(t, got[ProfilingLabelOperation], maxLabelValueLength)
	assert.NotContains(t, got, ProfilingLabelMethod)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	called := false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}
