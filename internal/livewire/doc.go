// Package livewire implements the shortest-path engine behind live-wire
// ("intelligent scissors") boundary tracing.
//
// A CostGrid holds one non-negative base cost per pixel, typically produced
// by the feature extractor in the imaging package: strong edges are cheap,
// flat regions are expensive. A PathGraph expands a seed over the whole grid
// with Dijkstra's algorithm and keeps, for every cell, the cumulative cost of
// the cheapest path back to the seed and a parent pointer along that path.
// A BoundaryTracker walks those parent pointers to preview the live path to
// the cursor and to cool accepted segments into a boundary, detecting when
// the boundary closes back onto its first node.
//
// # Coordinate System
//
// Cells are addressed by (row, col), 0-based, row-major. Row corresponds to
// the image Y axis and col to the X axis; no other transform is applied.
//
// # Edge Weights
//
// Moving into a neighbour costs the neighbour's base cost for an axis-aligned
// step and round(√2 × base cost) for a diagonal step, which approximates
// Euclidean path length while keeping costs additive integers.
//
// # Wavefront Ordering
//
// The wavefront is a binary heap keyed by the active Ordering. Equal keys are
// popped in insertion order (FIFO), so paths across cost plateaus are
// deterministic for a given grid and seed.
//
// # Thread Safety
//
// PathGraph and BoundaryTracker are not safe for concurrent mutation. A
// caller that shares them between goroutines must serialize Seed, Reset and
// CoolBoundary; the session package does this with a mutex.
package livewire
