package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/livewire-mcp/internal/imaging"
)

// Config aggregates application configuration values.
type Config struct {
	Logging LoggingConfig
	Trace   TraceConfig
	Metrics MetricsConfig
	Cost    imaging.CostOptions
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

// TraceConfig governs interactive tracing behaviour.
type TraceConfig struct {
	// SnapRadius is the half-size of the window searched for a cheaper cell
	// around every click. Zero disables snapping.
	SnapRadius int
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics, e.g. ":9090". Empty disables
	// the endpoint.
	Addr string
}

const (
	defaultLoggingLevel  = "info"
	defaultLoggingFormat = "text"
	defaultSnapRadius    = 7
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Logging: LoggingConfig{
			Level:         valueOrDefault("LIVEWIRE_LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LIVEWIRE_LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LIVEWIRE_LOG_INCLUDE_CALLER", false),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv("LIVEWIRE_METRICS_ADDR"),
		},
		Cost: imaging.DefaultCostOptions(),
	}

	radius, err := parseInt("LIVEWIRE_SNAP_RADIUS", defaultSnapRadius)
	if err != nil {
		return Config{}, err
	}
	if radius < 0 {
		return Config{}, fmt.Errorf("LIVEWIRE_SNAP_RADIUS must not be negative, got %d", radius)
	}
	cfg.Trace.SnapRadius = radius

	weights := []struct {
		key string
		dst *float64
	}{
		{"LIVEWIRE_WEIGHT_GRADIENT", &cfg.Cost.Weights.Gradient},
		{"LIVEWIRE_WEIGHT_EDGE", &cfg.Cost.Weights.Edge},
		{"LIVEWIRE_WEIGHT_DIRECTION", &cfg.Cost.Weights.Direction},
		{"LIVEWIRE_WEIGHT_COLOR", &cfg.Cost.Weights.Color},
		{"LIVEWIRE_BLUR_RADIUS", &cfg.Cost.BlurRadius},
	}
	for _, w := range weights {
		v, err := parseFloat(w.key, *w.dst)
		if err != nil {
			return Config{}, err
		}
		*w.dst = v
	}

	if cfg.Cost.CannyLow, err = parseInt("LIVEWIRE_CANNY_LOW", cfg.Cost.CannyLow); err != nil {
		return Config{}, err
	}
	if cfg.Cost.CannyHigh, err = parseInt("LIVEWIRE_CANNY_HIGH", cfg.Cost.CannyHigh); err != nil {
		return Config{}, err
	}
	if err := cfg.Cost.Validate(); err != nil {
		return Config{}, fmt.Errorf("LIVEWIRE_* cost settings: %w", err)
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		return val, nil
	}
	return fallback, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		return val, nil
	}
	return fallback, nil
}
