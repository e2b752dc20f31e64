package livewire

import "math"

// noParent marks an arena slot without a parent pointer.
const noParent int32 = -1

// mooreOffsets lists the 8 neighbours in row-major order. The order is part
// of the tie-break policy and must stay fixed.
var mooreOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// PathNode is a snapshot of one cell's expansion state.
type PathNode struct {
	Cell
	// Cost is the cumulative cost from the seed, or the base cost when the
	// cell has not been reached by the current expansion.
	Cost int64 `json:"cost"`
	// Parent is the next cell on the cheapest path to the seed; nil for the
	// seed and for cells not yet expanded.
	Parent *Cell `json:"parent,omitempty"`
}

// Tree is anything that can report per-cell expansion state. PathGraph is
// the production implementation; BoundaryTracker only needs this view.
type Tree interface {
	NodeAt(row, col int) (PathNode, error)
}

// ExpandStats describes the work done by the most recent expansion.
type ExpandStats struct {
	Closed int `json:"closed"`
	Pushed int `json:"pushed"`
	Stale  int `json:"stale"`
}

// Options configures a PathGraph.
type Options struct {
	Ordering Ordering
}

// Option mutates Options.
type Option func(*Options)

// WithOrdering selects the wavefront ordering policy.
func WithOrdering(o Ordering) Option {
	return func(opts *Options) { opts.Ordering = o }
}

// PathGraph holds the per-cell cumulative cost and parent state of one
// seed expansion over a CostGrid.
//
// State lives in flat arenas indexed like the grid; a parent is an index into
// the same arena, never a pointer. The arenas are allocated once in
// NewPathGraph and reset in place on every Seed.
type PathGraph struct {
	grid     *CostGrid
	ordering Ordering

	cost   []int64
	parent []int32
	closed []bool
	front  wavefront

	lastSeed Cell
	seeded   bool
	stats    ExpandStats
}

// NewPathGraph allocates the expansion state for grid and resets it.
func NewPathGraph(grid *CostGrid, opts ...Option) *PathGraph {
	cfg := Options{Ordering: OrderByCost}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := grid.height * grid.width
	g := &PathGraph{
		grid:     grid,
		ordering: cfg.Ordering,
		cost:     make([]int64, n),
		parent:   make([]int32, n),
		closed:   make([]bool, n),
	}
	g.Reset()
	return g
}

// Grid returns the immutable base costs the graph was built from.
func (g *PathGraph) Grid() *CostGrid { return g.grid }

// Ordering returns the active wavefront ordering.
func (g *PathGraph) Ordering() Ordering { return g.ordering }

// Reset restores every cell to its base cost with no parent.
func (g *PathGraph) Reset() {
	copy(g.cost, g.grid.costs)
	for i := range g.parent {
		g.parent[i] = noParent
	}
}

// Seed discards any previous expansion and expands from (row, col).
//
// Every cell is reset to its base cost with no parent, then Dijkstra runs
// from the seed until the wavefront is empty. Afterwards every other cell
// holds its cumulative cost from the seed and a parent one step closer to it.
//
// Parameters:
//   - row: Seed row (0-based, from the top).
//   - col: Seed column (0-based, from the left).
//
// Returns:
//   - PathNode: The seed's snapshot, whose cost is 0 and parent nil.
//   - error: Non-nil if (row, col) lies outside the grid; the previous
//     expansion is then left untouched.
//
// # Errors
//
//   - ErrOutOfBounds if (row, col) is not a grid cell.
//
// # Determinism
//
// Calling Seed twice with the same cell yields identical state: ties in the
// wavefront are broken by insertion order and neighbours are visited in a
// fixed row-major order.
func (g *PathGraph) Seed(row, col int) (PathNode, error) {
	if !g.grid.InBounds(row, col) {
		return PathNode{}, g.grid.outOfBounds(row, col)
	}
	g.Reset()
	g.expand(row, col)
	g.lastSeed = Cell{Row: row, Col: col}
	g.seeded = true
	return g.node(g.grid.index(row, col)), nil
}

// LastSeed returns the most recent seed, if any.
func (g *PathGraph) LastSeed() (Cell, bool) {
	return g.lastSeed, g.seeded
}

// Stats returns counters from the most recent expansion.
func (g *PathGraph) Stats() ExpandStats { return g.stats }

// NodeAt returns the expansion state of (row, col).
//
// Returns:
//   - PathNode: A snapshot of the cell's cumulative cost and parent. Before
//     any seed, or for a cell the expansion has not reached, Cost is the
//     base cost and Parent is nil.
//   - error: ErrOutOfBounds if (row, col) is not a grid cell.
func (g *PathGraph) NodeAt(row, col int) (PathNode, error) {
	if !g.grid.InBounds(row, col) {
		return PathNode{}, g.grid.outOfBounds(row, col)
	}
	return g.node(g.grid.index(row, col)), nil
}

// SnapToLowCost returns the cell with the lowest base cost in the square
// window of the given radius around (row, col).
//
// The window spans rows row-radius..row+radius and columns col-radius..
// col+radius inclusive and is clipped to the grid. Cells are scanned in
// row-major order and a cell replaces the current best only if strictly
// cheaper, so the centre wins ties against everything and earlier cells win
// ties among themselves. Expansion state is neither read nor changed.
func (g *PathGraph) SnapToLowCost(row, col, radius int) (Cell, error) {
	if !g.grid.InBounds(row, col) {
		return Cell{}, g.grid.outOfBounds(row, col)
	}
	if radius < 0 {
		radius = 0
	}

	best := Cell{Row: row, Col: col}
	bestCost := g.grid.costs[g.grid.index(row, col)]

	r0, r1 := max(row-radius, 0), min(row+radius, g.grid.height-1)
	c0, c1 := max(col-radius, 0), min(col+radius, g.grid.width-1)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if v := g.grid.costs[g.grid.index(r, c)]; v < bestCost {
				best, bestCost = Cell{Row: r, Col: c}, v
			}
		}
	}
	return best, nil
}

// expand runs Dijkstra from (row, col) over the whole grid. The caller must
// have reset the arenas.
func (g *PathGraph) expand(row, col int) {
	for i := range g.closed {
		g.closed[i] = false
	}
	g.front.reset()
	g.stats = ExpandStats{}

	seed := int32(g.grid.index(row, col))
	g.cost[seed] = 0
	g.push(seed, row, col)
	if g.front.Len() == 0 {
		panic("livewire: empty wavefront after seeding")
	}

	width := g.grid.width
	for g.front.Len() > 0 {
		cur := g.front.pop().idx
		if g.closed[cur] {
			g.stats.Stale++
			continue
		}
		g.closed[cur] = true
		g.stats.Closed++

		cr, cc := int(cur)/width, int(cur)%width
		for _, d := range mooreOffsets {
			nr, nc := cr+d[0], cc+d[1]
			if !g.grid.InBounds(nr, nc) {
				continue
			}
			n := int32(nr*width + nc)
			if g.closed[n] {
				continue
			}

			tentative := g.cost[cur] + edgeWeight(g.grid.costs[n], d[0] != 0 && d[1] != 0)
			if g.parent[n] == noParent || tentative < g.cost[n] {
				g.parent[n] = cur
				g.cost[n] = tentative
				g.push(n, row, col)
			}
		}
	}
}

// push inserts idx keyed by the active ordering relative to the seed.
func (g *PathGraph) push(idx int32, seedRow, seedCol int) {
	key := g.cost[idx]
	if g.ordering == OrderBySeedDistance {
		c := g.grid.cell(int(idx))
		dr, dc := int64(c.Row-seedRow), int64(c.Col-seedCol)
		key = dr*dr + dc*dc
	}
	g.front.push(idx, key)
	g.stats.Pushed++
}

func (g *PathGraph) node(idx int) PathNode {
	n := PathNode{Cell: g.grid.cell(idx), Cost: g.cost[idx]}
	if p := g.parent[idx]; p != noParent {
		pc := g.grid.cell(int(p))
		n.Parent = &pc
	}
	return n
}

// edgeWeight is the cost of stepping into a neighbour with the given base
// cost.
func edgeWeight(base int64, diagonal bool) int64 {
	if diagonal {
		return int64(math.Round(math.Sqrt2 * float64(base)))
	}
	return base
}
