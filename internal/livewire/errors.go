package livewire

import "errors"

var (
	// ErrInvalidDimensions indicates an empty or non-rectangular cost grid.
	ErrInvalidDimensions = errors.New("livewire: cost grid must be a non-empty rectangle")
	// ErrNegativeCost indicates a base cost below zero.
	ErrNegativeCost = errors.New("livewire: base costs must be non-negative")
	// ErrOutOfBounds indicates a (row, col) outside the grid.
	ErrOutOfBounds = errors.New("livewire: cell out of bounds")
	// ErrBoundaryClosed indicates an attempt to cool onto a boundary that already closed.
	ErrBoundaryClosed = errors.New("livewire: boundary is already closed")
)
