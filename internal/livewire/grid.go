package livewire

import "fmt"

// Cell identifies one pixel of the grid. Two cells are equal when row and
// column match; cost and parent are never part of a cell's identity.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String returns the cell as "(row,col)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// CostGrid is an immutable H×W array of non-negative base costs.
//
// Costs are stored row-major in a flat slice so that the PathGraph arena can
// address a cell by the same index.
type CostGrid struct {
	height int
	width  int
	costs  []int64
}

// NewCostGrid builds a CostGrid from a rectangular [row][col] slice.
//
// The input is copied; later changes to values do not affect the grid.
//
// # Errors
//
//   - ErrInvalidDimensions if values has no rows, an empty first row, or rows
//     of differing lengths.
//   - ErrNegativeCost if any entry is below zero.
func NewCostGrid(values [][]int) (*CostGrid, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, fmt.Errorf("%w: got %d rows", ErrInvalidDimensions, len(values))
	}
	height, width := len(values), len(values[0])

	costs := make([]int64, 0, height*width)
	for r, row := range values {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d",
				ErrInvalidDimensions, r, len(row), width)
		}
		for c, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("%w: cell (%d,%d) = %d", ErrNegativeCost, r, c, v)
			}
			costs = append(costs, int64(v))
		}
	}

	return &CostGrid{height: height, width: width, costs: costs}, nil
}

// Height returns the number of rows.
func (g *CostGrid) Height() int { return g.height }

// Width returns the number of columns.
func (g *CostGrid) Width() int { return g.width }

// InBounds reports whether (row, col) addresses a cell of the grid.
func (g *CostGrid) InBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// At returns the base cost of (row, col).
func (g *CostGrid) At(row, col int) (int, error) {
	if !g.InBounds(row, col) {
		return 0, g.outOfBounds(row, col)
	}
	return int(g.costs[g.index(row, col)]), nil
}

// Min returns the smallest base cost in the grid.
func (g *CostGrid) Min() int {
	m := g.costs[0]
	for _, v := range g.costs[1:] {
		if v < m {
			m = v
		}
	}
	return int(m)
}

// Max returns the largest base cost in the grid.
func (g *CostGrid) Max() int {
	m := g.costs[0]
	for _, v := range g.costs[1:] {
		if v > m {
			m = v
		}
	}
	return int(m)
}

func (g *CostGrid) index(row, col int) int {
	return row*g.width + col
}

func (g *CostGrid) cell(idx int) Cell {
	return Cell{Row: idx / g.width, Col: idx % g.width}
}

func (g *CostGrid) outOfBounds(row, col int) error {
	return fmt.Errorf("%w: (%d,%d) not in %dx%d grid", ErrOutOfBounds, row, col, g.height, g.width)
}
