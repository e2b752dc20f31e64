// Package session drives interactive tracing on one cost grid.
//
// A Session turns clicks into seeds and cooled boundary segments:
//
//	IDLE    --click--> SEEDED   (first seed placed)
//	SEEDED  --click--> SEEDED   (segment cooled, re-seeded at the click)
//	SEEDED  --click--> CLOSED   (segment reached the first seed)
//	any     --Clear--> IDLE
//
// Every click is snapped to the cheapest cell within the snap radius before
// it is used. All methods are safe for concurrent use; seeding is
// serialized so only one expansion is ever live.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
	"github.com/ironsheep/livewire-mcp/internal/logging"
	"github.com/ironsheep/livewire-mcp/internal/metrics"
)

var (
	// ErrSessionClosed is returned for clicks after the boundary has closed.
	ErrSessionClosed = errors.New("session: boundary is closed; clear to start again")
	// ErrNotSeeded is returned by queries that need a live expansion.
	ErrNotSeeded = errors.New("session: no seed placed")
)

// DefaultSnapRadius is the snap window half-size used when none is given.
const DefaultSnapRadius = 7

// State is the position of a Session in its click state machine.
type State int

const (
	StateIdle State = iota
	StateSeeded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSeeded:
		return "SEEDED"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ClickResult describes the effect of one click.
type ClickResult struct {
	Clicked livewire.Cell `json:"clicked"`
	Snapped livewire.Cell `json:"snapped"`
	State   State         `json:"state"`
	Closed  bool          `json:"closed"`
	// Segment holds the boundary nodes this click appended.
	Segment        []livewire.Cell       `json:"segment,omitempty"`
	BoundaryLength int                   `json:"boundary_length"`
	Expansion      *livewire.ExpandStats `json:"expansion,omitempty"`
	Elapsed        time.Duration         `json:"elapsed_ns"`
}

type options struct {
	snapRadius int
	ordering   livewire.Ordering
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// Option configures a Session.
type Option func(*options)

// WithSnapRadius sets the snap window half-size. Zero disables snapping.
func WithSnapRadius(r int) Option {
	return func(o *options) { o.snapRadius = max(r, 0) }
}

// WithOrdering selects the wavefront ordering of the underlying PathGraph.
func WithOrdering(ord livewire.Ordering) Option {
	return func(o *options) { o.ordering = ord }
}

// WithLogger sets the logger used for expansion and state-change records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the recorder for expansion and click metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) { o.metrics = m }
}

// Session is one tracing session over a cost grid.
type Session struct {
	mu      sync.Mutex
	graph   *livewire.PathGraph
	tracker *livewire.BoundaryTracker
	state   State
	seed    livewire.Cell

	snapRadius int
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// New creates an idle session on grid.
//
// Parameters:
//   - grid: The base costs to trace on. The session allocates one PathGraph
//     for it and reuses that for every seed.
//   - opts: WithSnapRadius (default DefaultSnapRadius), WithOrdering
//     (default livewire.OrderByCost), WithLogger and WithMetrics.
//
// Returns:
//   - *Session: A session in StateIdle with an empty boundary.
func New(grid *livewire.CostGrid, opts ...Option) *Session {
	o := options{
		snapRadius: DefaultSnapRadius,
		ordering:   livewire.OrderByCost,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	return &Session{
		graph:      livewire.NewPathGraph(grid, livewire.WithOrdering(o.ordering)),
		tracker:    livewire.NewBoundaryTracker(),
		snapRadius: o.snapRadius,
		logger:     o.logger,
		metrics:    o.metrics,
	}
}

// Grid returns the cost grid the session traces on.
func (s *Session) Grid() *livewire.CostGrid { return s.graph.Grid() }

// SnapRadius returns the configured snap window half-size.
func (s *Session) SnapRadius() int { return s.snapRadius }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seed returns the current seed. ok is false while idle.
func (s *Session) Seed() (seed livewire.Cell, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed, s.state != StateIdle
}

// Snap returns the cell a click at (row, col) would be snapped to.
func (s *Session) Snap(row, col int) (livewire.Cell, error) {
	return s.graph.SnapToLowCost(row, col, s.snapRadius)
}

// Click applies a click at (row, col).
//
// The click is first snapped to the cheapest cell within the snap radius.
// What happens next depends on the state:
//
//   - IDLE: the snapped cell becomes the first seed and a full expansion
//     runs from it. The state moves to SEEDED.
//   - SEEDED: the path from the snapped cell back to the current seed is
//     cooled onto the boundary. If that path reaches the first seed the
//     state moves to CLOSED and no new expansion runs; otherwise the snapped
//     cell becomes the new seed.
//   - CLOSED: the click is rejected.
//
// Parameters:
//   - row: Click row (0-based, from the top).
//   - col: Click column (0-based, from the left).
//
// Returns:
//   - *ClickResult: The clicked and snapped cells, the new state, the cooled
//     segment and the expansion statistics when an expansion ran.
//   - error: Non-nil if the click was rejected; the session is unchanged.
//
// # Errors
//
//   - ErrSessionClosed if the boundary is already closed.
//   - livewire.ErrOutOfBounds if (row, col) is not a grid cell.
func (s *Session) Click(row, col int) (*ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clicked := livewire.Cell{Row: row, Col: col}
	if s.state == StateClosed {
		s.metrics.ObserveClick(metrics.ClickRejected)
		return nil, ErrSessionClosed
	}

	snapped, err := s.graph.SnapToLowCost(row, col, s.snapRadius)
	if err != nil {
		s.metrics.ObserveClick(metrics.ClickRejected)
		return nil, err
	}

	res := &ClickResult{Clicked: clicked, Snapped: snapped}
	start := time.Now()

	switch s.state {
	case StateIdle:
		stats, err := s.reseed(snapped)
		if err != nil {
			return nil, err
		}
		s.state = StateSeeded
		res.Expansion = &stats
		s.metrics.ObserveClick(metrics.ClickSeeded)

	case StateSeeded:
		before := s.tracker.Len()
		closed, err := s.tracker.CoolBoundary(s.graph, snapped, s.seed)
		if err != nil {
			return nil, err
		}
		res.Segment = segmentSince(s.tracker.Cells(), before)

		if closed {
			s.state = StateClosed
			res.Closed = true
			s.metrics.ObserveClick(metrics.ClickClosed)
			s.logger.Info("boundary closed", "nodes", s.tracker.Len())
			break
		}

		stats, err := s.reseed(snapped)
		if err != nil {
			return nil, err
		}
		res.Expansion = &stats
		s.metrics.ObserveClick(metrics.ClickExtended)
	}

	res.State = s.state
	res.BoundaryLength = s.tracker.Len()
	res.Elapsed = time.Since(start)
	s.metrics.SetBoundaryNodes(res.BoundaryLength)
	return res, nil
}

// reseed runs one full expansion from cell. Callers hold s.mu.
func (s *Session) reseed(cell livewire.Cell) (livewire.ExpandStats, error) {
	start := time.Now()
	if _, err := s.graph.Seed(cell.Row, cell.Col); err != nil {
		return livewire.ExpandStats{}, err
	}
	elapsed := time.Since(start)
	stats := s.graph.Stats()

	s.seed = cell
	s.metrics.ObserveExpansion(elapsed, stats)
	s.logger.Debug("expanded",
		"seed", cell.String(),
		"closed", stats.Closed,
		"pushed", stats.Pushed,
		"stale", stats.Stale,
		"elapsed", elapsed)
	return stats, nil
}

func segmentSince(cells []livewire.Cell, from int) []livewire.Cell {
	if from >= len(cells) {
		return nil
	}
	return cells[from:]
}

// Preview returns the live path from the cursor at (row, col) back to the
// current seed. It is empty while idle and is the committed boundary once
// closed. The cursor is not snapped.
func (s *Session) Preview(row, col int) ([]livewire.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return nil, nil
	case StateClosed:
		return s.tracker.Cells(), nil
	}
	return s.tracker.LivePath(s.graph, livewire.Cell{Row: row, Col: col}, s.seed)
}

// PathCost returns the cumulative cost of reaching (row, col) from the
// current seed.
func (s *Session) PathCost(row, col int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle:
		return 0, ErrNotSeeded
	case StateClosed:
		return 0, ErrSessionClosed
	}
	node, err := s.graph.NodeAt(row, col)
	if err != nil {
		return 0, err
	}
	return node.Cost, nil
}

// Boundary returns the committed boundary cells, first seed first.
func (s *Session) Boundary() []livewire.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Cells()
}

// BoundaryNodes returns the committed boundary with cumulative costs.
func (s *Session) BoundaryNodes() []livewire.PathNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Boundary()
}

// Clear discards the boundary and seed and returns to IDLE.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Clear()
	s.graph.Reset()
	s.state = StateIdle
	s.seed = livewire.Cell{}
	s.metrics.SetBoundaryNodes(0)
	s.logger.Debug("session cleared")
}
