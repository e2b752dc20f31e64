package livewire

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformGrid returns an h×w grid with every base cost set to v.
func uniformGrid(t *testing.T, h, w, v int) *CostGrid {
	t.Helper()
	values := make([][]int, h)
	for r := range values {
		values[r] = make([]int, w)
		for c := range values[r] {
			values[r][c] = v
		}
	}
	g, err := NewCostGrid(values)
	require.NoError(t, err)
	return g
}

// randomGrid returns an h×w grid of costs in [0,255] from a fixed source.
func randomGrid(t *testing.T, h, w int, seed int64) *CostGrid {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	values := make([][]int, h)
	for r := range values {
		values[r] = make([]int, w)
		for c := range values[r] {
			values[r][c] = rng.Intn(256)
		}
	}
	g, err := NewCostGrid(values)
	require.NoError(t, err)
	return g
}

// snapshot captures the whole expansion state of g.
func snapshot(t *testing.T, g *PathGraph) []PathNode {
	t.Helper()
	grid := g.Grid()
	nodes := make([]PathNode, 0, grid.Height()*grid.Width())
	for r := 0; r < grid.Height(); r++ {
		for c := 0; c < grid.Width(); c++ {
			n, err := g.NodeAt(r, c)
			require.NoError(t, err)
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func TestNewCostGrid_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values [][]int
		want   error
	}{
		{"nil", nil, ErrInvalidDimensions},
		{"empty row", [][]int{{}}, ErrInvalidDimensions},
		{"jagged", [][]int{{1, 2}, {3}}, ErrInvalidDimensions},
		{"negative", [][]int{{1, -2}}, ErrNegativeCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCostGrid(tt.values)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestNewCostGrid_CopiesInput(t *testing.T) {
	values := [][]int{{1, 2}, {3, 4}}
	g, err := NewCostGrid(values)
	require.NoError(t, err)

	values[0][0] = 99
	v, err := g.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, g.Min())
	assert.Equal(t, 4, g.Max())
	assert.Equal(t, 2, g.Height())
	assert.Equal(t, 2, g.Width())
}

func TestSeed_Invariant(t *testing.T) {
	g := NewPathGraph(randomGrid(t, 20, 30, 1))

	seed, err := g.Seed(7, 11)
	require.NoError(t, err)
	assert.Equal(t, Cell{Row: 7, Col: 11}, seed.Cell)
	assert.Zero(t, seed.Cost)
	assert.Nil(t, seed.Parent)

	n, err := g.NodeAt(7, 11)
	require.NoError(t, err)
	assert.Zero(t, n.Cost)
	assert.Nil(t, n.Parent)

	last, ok := g.LastSeed()
	assert.True(t, ok)
	assert.Equal(t, Cell{Row: 7, Col: 11}, last)
}

func TestSeed_EveryOtherCellHasParent(t *testing.T) {
	g := NewPathGraph(randomGrid(t, 15, 15, 2))
	_, err := g.Seed(0, 0)
	require.NoError(t, err)

	for _, n := range snapshot(t, g) {
		if n.Cell == (Cell{}) {
			continue
		}
		assert.NotNil(t, n.Parent, "cell %v has no parent", n.Cell)
	}
	assert.Equal(t, 15*15, g.Stats().Closed)
}

func TestSeed_Deterministic(t *testing.T) {
	g := NewPathGraph(randomGrid(t, 25, 25, 3))

	_, err := g.Seed(12, 4)
	require.NoError(t, err)
	first := snapshot(t, g)

	// An unrelated seed in between must not leak into the repeat.
	_, err = g.Seed(0, 24)
	require.NoError(t, err)

	_, err = g.Seed(12, 4)
	require.NoError(t, err)
	assert.Equal(t, first, snapshot(t, g))
}

func TestSeed_Monotonic(t *testing.T) {
	for _, ordering := range []Ordering{OrderByCost, OrderBySeedDistance} {
		t.Run(ordering.String(), func(t *testing.T) {
			g := NewPathGraph(randomGrid(t, 30, 20, 4), WithOrdering(ordering))
			_, err := g.Seed(15, 10)
			require.NoError(t, err)

			for _, n := range snapshot(t, g) {
				if n.Parent == nil {
					continue
				}
				p, err := g.NodeAt(n.Parent.Row, n.Parent.Col)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, n.Cost, p.Cost, "cell %v cheaper than parent %v", n.Cell, p.Cell)
			}
		})
	}
}

func TestSeed_OutOfBounds(t *testing.T) {
	g := NewPathGraph(uniformGrid(t, 3, 3, 1))
	for _, c := range []Cell{{-1, 0}, {0, -1}, {3, 0}, {0, 3}} {
		_, err := g.Seed(c.Row, c.Col)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "Seed%v: got %v", c, err)
		_, err = g.NodeAt(c.Row, c.Col)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "NodeAt%v: got %v", c, err)
		_, err = g.SnapToLowCost(c.Row, c.Col, 1)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "SnapToLowCost%v: got %v", c, err)
	}
	_, ok := g.LastSeed()
	assert.False(t, ok)
}

func TestReset_Idempotent(t *testing.T) {
	grid := randomGrid(t, 10, 12, 5)
	g := NewPathGraph(grid)
	_, err := g.Seed(4, 4)
	require.NoError(t, err)

	g.Reset()
	once := snapshot(t, g)
	g.Reset()
	assert.Equal(t, once, snapshot(t, g))

	for _, n := range once {
		base, err := grid.At(n.Row, n.Col)
		require.NoError(t, err)
		assert.Equal(t, int64(base), n.Cost)
		assert.Nil(t, n.Parent)
	}
}

func TestEdgeWeight(t *testing.T) {
	tests := []struct {
		base     int64
		diagonal bool
		want     int64
	}{
		{0, false, 0},
		{0, true, 0},
		{1, true, 1},
		{3, false, 3},
		{3, true, 4},
		{5, true, 7},
		{10, true, 14},
		{255, true, 361},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, edgeWeight(tt.base, tt.diagonal), "edgeWeight(%d, %v)", tt.base, tt.diagonal)
	}
}

func TestExpand_DiagonalScaling(t *testing.T) {
	g := NewPathGraph(uniformGrid(t, 3, 3, 10))
	_, err := g.Seed(1, 1)
	require.NoError(t, err)

	tests := []struct {
		cell Cell
		want int64
	}{
		{Cell{0, 0}, 14},
		{Cell{0, 1}, 10},
		{Cell{0, 2}, 14},
		{Cell{1, 0}, 10},
		{Cell{1, 2}, 10},
		{Cell{2, 0}, 14},
		{Cell{2, 1}, 10},
		{Cell{2, 2}, 14},
	}
	for _, tt := range tests {
		n, err := g.NodeAt(tt.cell.Row, tt.cell.Col)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n.Cost, "cost of %v", tt.cell)
		require.NotNil(t, n.Parent)
		assert.Equal(t, Cell{1, 1}, *n.Parent)
	}
}

func TestExpand_FollowsCheapChannel(t *testing.T) {
	// A cheap row 2 between expensive rows: the path from (2,6) to the seed
	// at (2,0) must stay in the channel.
	grid, err := NewCostGrid([][]int{
		{9, 9, 9, 9, 9, 9, 9},
		{9, 9, 9, 9, 9, 9, 9},
		{1, 1, 1, 1, 1, 1, 1},
		{9, 9, 9, 9, 9, 9, 9},
	})
	require.NoError(t, err)
	g := NewPathGraph(grid)
	_, err = g.Seed(2, 0)
	require.NoError(t, err)

	path, err := NewBoundaryTracker().LivePath(g, Cell{2, 6}, Cell{2, 0})
	require.NoError(t, err)
	want := []Cell{{2, 6}, {2, 5}, {2, 4}, {2, 3}, {2, 2}, {2, 1}, {2, 0}}
	assert.Equal(t, want, path)

	end, err := g.NodeAt(2, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(6), end.Cost)
}

func TestExpand_PlateauTieBreak(t *testing.T) {
	// On a flat grid the first closed neighbour wins. Neighbours are pushed
	// in row-major Moore order and equal keys pop FIFO, so (1,3) closes
	// before (2,3) and becomes the parent of (2,4).
	g := NewPathGraph(uniformGrid(t, 5, 5, 1))
	_, err := g.Seed(2, 2)
	require.NoError(t, err)

	n, err := g.NodeAt(2, 4)
	require.NoError(t, err)
	require.NotNil(t, n.Parent)
	assert.Equal(t, Cell{1, 3}, *n.Parent)
	assert.Equal(t, int64(2), n.Cost)
}

func TestExpand_SeedDistanceOrdering(t *testing.T) {
	g := NewPathGraph(randomGrid(t, 12, 12, 6), WithOrdering(OrderBySeedDistance))
	assert.Equal(t, OrderBySeedDistance, g.Ordering())

	_, err := g.Seed(6, 6)
	require.NoError(t, err)
	assert.Equal(t, 144, g.Stats().Closed)

	// Every chain still ends at the seed.
	tracker := NewBoundaryTracker()
	for _, n := range snapshot(t, g) {
		path, err := tracker.LivePath(g, n.Cell, Cell{6, 6})
		require.NoError(t, err)
		assert.Equal(t, Cell{6, 6}, path[len(path)-1])
	}
}

func TestSnapToLowCost(t *testing.T) {
	grid, err := NewCostGrid([][]int{
		{5, 5, 5},
		{5, 0, 5},
		{5, 5, 5},
	})
	require.NoError(t, err)
	g := NewPathGraph(grid)

	got, err := g.SnapToLowCost(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Cell{1, 1}, got)

	got, err = g.SnapToLowCost(0, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Cell{1, 1}, got)

	got, err = g.SnapToLowCost(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Cell{0, 0}, got)
}

func TestSnapToLowCost_ClipsAndKeepsCentreOnTies(t *testing.T) {
	grid, err := NewCostGrid([][]int{
		{3, 1, 3, 3},
		{3, 3, 3, 1},
		{3, 3, 3, 3},
	})
	require.NoError(t, err)
	g := NewPathGraph(grid)

	// Window far larger than the grid is clipped; the first strictly
	// cheaper cell in row-major order wins.
	got, err := g.SnapToLowCost(2, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, Cell{0, 1}, got)

	// Centre already minimal: ties do not move it.
	got, err = g.SnapToLowCost(1, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, Cell{1, 3}, got)

	// Snapping never touches expansion state.
	before := snapshot(t, g)
	_, err = g.SnapToLowCost(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(t, g))
}

func BenchmarkSeed(b *testing.B) {
	const n = 512
	rng := rand.New(rand.NewSource(42))
	values := make([][]int, n)
	for r := range values {
		values[r] = make([]int, n)
		for c := range values[r] {
			values[r][c] = rng.Intn(256)
		}
	}
	grid, err := NewCostGrid(values)
	if err != nil {
		b.Fatalf("NewCostGrid failed: %v", err)
	}
	g := NewPathGraph(grid)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Seed(n/2, n/2); err != nil {
			b.Fatal(err)
		}
	}
}
