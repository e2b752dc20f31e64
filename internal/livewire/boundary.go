package livewire

import "slices"

// BoundaryTracker assembles cooled path segments into one boundary and
// detects when that boundary closes onto its first node.
//
// Boundary nodes are snapshots taken at cooling time; a cell may appear with
// different costs and parents across segments, so identity is always the
// cell alone.
type BoundaryTracker struct {
	boundary []PathNode
	closed   bool
}

// NewBoundaryTracker returns an empty tracker.
func NewBoundaryTracker() *BoundaryTracker {
	return &BoundaryTracker{boundary: make([]PathNode, 0, 2000)}
}

// LivePath follows parent pointers from `from` until it reaches `to` or a
// cell without a parent, and returns the visited cells in walk order
// (from first). Cost is proportional to the path length.
//
// Parameters:
//   - tree: The expansion to walk, usually a seeded PathGraph.
//   - from: The cursor cell the path starts at.
//   - to: The cell to stop at, usually the current seed. It is included.
//
// Returns:
//   - []Cell: The path from `from` to `to`. It ends early at the first cell
//     without a parent when `to` is not an ancestor of `from`.
//   - error: ErrOutOfBounds if `from` or a parent lies outside the tree.
func (t *BoundaryTracker) LivePath(tree Tree, from, to Cell) ([]Cell, error) {
	n, err := tree.NodeAt(from.Row, from.Col)
	if err != nil {
		return nil, err
	}

	path := []Cell{n.Cell}
	for n.Cell != to && n.Parent != nil {
		if n, err = tree.NodeAt(n.Parent.Row, n.Parent.Col); err != nil {
			return nil, err
		}
		path = append(path, n.Cell)
	}
	return path, nil
}

// CoolBoundary commits the path from `from` back to `toSeed` to the
// boundary and reports whether it closed the loop.
//
// The walk stops before toSeed, which already ends the previous segment;
// only the very first segment also commits its seed, so the boundary starts
// at the first seed. Closure is the first walked node equal to the
// boundary's first node. Every node walked before that point lies past the
// closing node once the segment is reversed into seed→click order, so the
// trailing redundant+1 entries are dropped and the closing node is not
// repeated.
//
// Parameters:
//   - tree: The expansion seeded at toSeed.
//   - from: The accepted click; the new segment ends here.
//   - toSeed: The seed of tree, where the previous segment ended.
//
// Returns:
//   - bool: True if this segment closed the boundary. The tracker then
//     rejects further cooling.
//   - error: Non-nil if the tracker is already closed or a walked cell lies
//     outside the tree; the boundary is unchanged in both cases.
//
// # Errors
//
//   - ErrBoundaryClosed if a previous segment closed the boundary.
//   - ErrOutOfBounds if `from` or a parent is not a cell of tree.
func (t *BoundaryTracker) CoolBoundary(tree Tree, from, toSeed Cell) (bool, error) {
	if t.closed {
		return false, ErrBoundaryClosed
	}

	n, err := tree.NodeAt(from.Row, from.Col)
	if err != nil {
		return false, err
	}

	var (
		buffer    []PathNode
		closed    bool
		redundant int
	)
	for n.Cell != toSeed && n.Parent != nil {
		if len(t.boundary) > 0 && t.boundary[0].Cell == n.Cell {
			closed = true
		}
		if !closed {
			redundant++
		}
		buffer = append(buffer, n)
		if n, err = tree.NodeAt(n.Parent.Row, n.Parent.Col); err != nil {
			return false, err
		}
	}
	if len(t.boundary) == 0 {
		buffer = append(buffer, n)
	}

	slices.Reverse(buffer)
	t.boundary = append(t.boundary, buffer...)

	if closed {
		t.boundary = t.boundary[:len(t.boundary)-redundant-1]
		t.closed = true
	}
	return closed, nil
}

// Boundary returns a copy of the committed boundary.
func (t *BoundaryTracker) Boundary() []PathNode {
	return slices.Clone(t.boundary)
}

// Cells returns the committed boundary as cells.
func (t *BoundaryTracker) Cells() []Cell {
	cells := make([]Cell, len(t.boundary))
	for i, n := range t.boundary {
		cells[i] = n.Cell
	}
	return cells
}

// Len returns the number of committed nodes.
func (t *BoundaryTracker) Len() int { return len(t.boundary) }

// Closed reports whether a cooled segment has closed the boundary.
func (t *BoundaryTracker) Closed() bool { return t.closed }

// Clear empties the boundary and forgets closure.
func (t *BoundaryTracker) Clear() {
	t.boundary = t.boundary[:0]
	t.closed = false
}
