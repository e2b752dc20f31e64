package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/livewire-mcp/internal/imaging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Logging.IncludeCaller)
	assert.Equal(t, 7, cfg.Trace.SnapRadius)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, imaging.DefaultCostOptions(), cfg.Cost)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LIVEWIRE_LOG_LEVEL", "debug")
	t.Setenv("LIVEWIRE_LOG_FORMAT", "json")
	t.Setenv("LIVEWIRE_LOG_INCLUDE_CALLER", "true")
	t.Setenv("LIVEWIRE_SNAP_RADIUS", "0")
	t.Setenv("LIVEWIRE_METRICS_ADDR", ":9090")
	t.Setenv("LIVEWIRE_WEIGHT_GRADIENT", "0.5")
	t.Setenv("LIVEWIRE_WEIGHT_EDGE", "0")
	t.Setenv("LIVEWIRE_WEIGHT_DIRECTION", "0.1")
	t.Setenv("LIVEWIRE_WEIGHT_COLOR", "0.3")
	t.Setenv("LIVEWIRE_CANNY_LOW", "20")
	t.Setenv("LIVEWIRE_CANNY_HIGH", "60")
	t.Setenv("LIVEWIRE_BLUR_RADIUS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.IncludeCaller)
	assert.Equal(t, 0, cfg.Trace.SnapRadius)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, imaging.CostOptions{
		Weights:    imaging.FeatureWeights{Gradient: 0.5, Edge: 0, Direction: 0.1, Color: 0.3},
		CannyLow:   20,
		CannyHigh:  60,
		BlurRadius: 0,
	}, cfg.Cost)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"radius not a number", "LIVEWIRE_SNAP_RADIUS", "seven"},
		{"negative radius", "LIVEWIRE_SNAP_RADIUS", "-1"},
		{"weight not a number", "LIVEWIRE_WEIGHT_GRADIENT", "heavy"},
		{"negative weight", "LIVEWIRE_WEIGHT_EDGE", "-0.2"},
		{"negative blur", "LIVEWIRE_BLUR_RADIUS", "-1"},
		{"canny not a number", "LIVEWIRE_CANNY_LOW", "low"},
		{"canny above range", "LIVEWIRE_CANNY_HIGH", "300"},
		{"canny inverted", "LIVEWIRE_CANNY_LOW", "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseBoolWithDefault(t *testing.T) {
	t.Setenv("LIVEWIRE_TEST_BOOL", "notabool")
	assert.True(t, parseBoolWithDefault("LIVEWIRE_TEST_BOOL", true))
	assert.False(t, parseBoolWithDefault("LIVEWIRE_TEST_UNSET", false))
}
