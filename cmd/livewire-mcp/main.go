package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/livewire-mcp/internal/config"
	"github.com/ironsheep/livewire-mcp/internal/logging"
	"github.com/ironsheep/livewire-mcp/internal/metrics"
	"github.com/ironsheep/livewire-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "livewire-mcp",
		Short: "Live-wire boundary tracing over MCP",
		Long: `livewire-mcp traces object boundaries in raster images with the
live-wire ("intelligent scissors") technique. Clicks near an edge are joined
by minimum-cost paths that follow the image's gradients.

Without a subcommand it runs the MCP server on stdin/stdout.

Environment variables:
  LIVEWIRE_LOG_LEVEL       debug|info|warn|error (default info)
  LIVEWIRE_LOG_FORMAT      text|json (default text)
  LIVEWIRE_SNAP_RADIUS     click snap radius in pixels (default 7)
  LIVEWIRE_METRICS_ADDR    serve Prometheus metrics on this address
  LIVEWIRE_WEIGHT_*        GRADIENT, EDGE, DIRECTION, COLOR feature weights
  LIVEWIRE_CANNY_LOW/HIGH  Canny thresholds (default 15/45)
  LIVEWIRE_BLUR_RADIUS     Gaussian blur radius (default 1.0)`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides LIVEWIRE_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format text|json (overrides LIVEWIRE_LOG_FORMAT)")
	rootCmd.PersistentFlags().Int("snap-radius", 0, "Click snap radius (overrides LIVEWIRE_SNAP_RADIUS)")
	rootCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (overrides LIVEWIRE_METRICS_ADDR)")

	traceCmd := &cobra.Command{
		Use:   "trace <image>",
		Short: "Replay clicks on an image and write the traced boundary",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrace,
	}
	traceCmd.Flags().StringArray("click", nil, "Click at x,y (repeat in order)")
	traceCmd.Flags().Bool("close", false, "Click the first point again after the last click to close the boundary")
	traceCmd.Flags().String("overlay", "", "Write the boundary overlay PNG to this path")
	traceCmd.Flags().String("segment", "", "Write the enclosed segment PNG to this path (requires a closed boundary)")
	traceCmd.Flags().String("mask", "", "Write the segment mask PNG to this path (requires a closed boundary)")
	traceCmd.Flags().String("cost-map", "", "Write the cost map PNG to this path")
	traceCmd.Flags().Float64("tolerance", 0, "Douglas-Peucker tolerance for the simplified outline")
	traceCmd.Flags().Bool("json", false, "Print the result as JSON")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "livewire-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}

	rootCmd.AddCommand(serveCmd, traceCmd, versionCmd)
	return rootCmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("snap-radius") {
		r, _ := flags.GetInt("snap-radius")
		if r < 0 {
			return config.Config{}, fmt.Errorf("--snap-radius must not be negative, got %d", r)
		}
		cfg.Trace.SnapRadius = r
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging)
	logger.Debug("starting livewire-mcp",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := rec.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics endpoint failed", "addr", cfg.Metrics.Addr, "error", err)
			}
		}()
	}

	srv := server.New(
		server.WithCostOptions(cfg.Cost),
		server.WithSnapRadius(cfg.Trace.SnapRadius),
		server.WithLogger(logger),
		server.WithMetrics(rec),
		server.WithVersion(Version),
	)
	if err := srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		logger.Error("server error", slog.Any("error", err))
		return err
	}
	return nil
}
