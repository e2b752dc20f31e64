// Package metrics exposes Prometheus collectors for live-wire tracing.
//
// A Recorder owns its registry so independent servers (and tests) never
// collide on collector names. All Recorder methods are nil-safe; a nil
// *Recorder records nothing.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
)

// Click results recorded by ObserveClick.
const (
	ClickSeeded   = "seeded"
	ClickExtended = "extended"
	ClickClosed   = "closed"
	ClickRejected = "rejected"
)

// Recorder groups the collectors of one server.
type Recorder struct {
	registry *prometheus.Registry

	expansionDuration prometheus.Histogram
	expansionClosed   prometheus.Histogram
	staleEntries      prometheus.Counter
	seedsTotal        prometheus.Counter
	clicksTotal       *prometheus.CounterVec
	boundaryNodes     prometheus.Gauge
	costGridBuilds    prometheus.Histogram
}

// New creates a Recorder with a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		expansionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livewire_expansion_duration_seconds",
			Help:    "Duration of one full Dijkstra expansion from a seed",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		expansionClosed: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livewire_expansion_closed_nodes",
			Help:    "Nodes finalized per expansion",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		}),
		staleEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "livewire_wavefront_stale_entries_total",
			Help: "Superseded wavefront entries discarded on pop",
		}),
		seedsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "livewire_seeds_total",
			Help: "Total seeds placed",
		}),
		clicksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livewire_clicks_total",
			Help: "Total clicks by result",
		}, []string{"result"}),
		boundaryNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livewire_boundary_nodes",
			Help: "Nodes in the most recently updated committed boundary",
		}),
		costGridBuilds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livewire_cost_grid_build_duration_seconds",
			Help:    "Duration of feature extraction and cost grid construction",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// ObserveExpansion records the duration and work of one seed expansion.
func (r *Recorder) ObserveExpansion(d time.Duration, stats livewire.ExpandStats) {
	if r == nil {
		return
	}
	r.seedsTotal.Inc()
	r.expansionDuration.Observe(d.Seconds())
	r.expansionClosed.Observe(float64(stats.Closed))
	r.staleEntries.Add(float64(stats.Stale))
}

// ObserveClick counts a click by result, one of the Click* constants.
func (r *Recorder) ObserveClick(result string) {
	if r == nil {
		return
	}
	r.clicksTotal.WithLabelValues(result).Inc()
}

// SetBoundaryNodes records the current committed boundary length.
func (r *Recorder) SetBoundaryNodes(n int) {
	if r == nil {
		return
	}
	r.boundaryNodes.Set(float64(n))
}

// ObserveCostGridBuild records the time spent building a cost grid.
func (r *Recorder) ObserveCostGridBuild(d time.Duration) {
	if r == nil {
		return
	}
	r.costGridBuilds.Observe(d.Seconds())
}

// Registry returns the registry backing r.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler returns an HTTP handler serving r's metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
