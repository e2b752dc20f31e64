package imaging

import (
	"testing"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
)

func TestMeasureBoundary_Square(t *testing.T) {
	corners := []livewire.Cell{
		{Row: 0, Col: 0},
		{Row: 0, Col: 4},
		{Row: 4, Col: 4},
		{Row: 4, Col: 0},
	}

	geom := MeasureBoundary(corners, true, 0)

	if geom.Points != 4 {
		t.Errorf("Points: got %d, want 4", geom.Points)
	}
	if geom.Perimeter != 16 {
		t.Errorf("Perimeter: got %f, want 16", geom.Perimeter)
	}
	if geom.Area != 16 {
		t.Errorf("Area: got %f, want 16", geom.Area)
	}
	if geom.CentroidX != 2 || geom.CentroidY != 2 {
		t.Errorf("Centroid: got (%f,%f), want (2,2)", geom.CentroidX, geom.CentroidY)
	}
	if !geom.Clockwise {
		t.Error("top-left, top-right, bottom-right order should be clockwise on screen")
	}
	if want := (Region{X1: 0, Y1: 0, X2: 5, Y2: 5}); geom.Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", geom.Bounds, want)
	}
	if geom.Simplified != nil {
		t.Error("Simplified should be empty without a tolerance")
	}
}

func TestMeasureBoundary_Open(t *testing.T) {
	corners := []livewire.Cell{
		{Row: 0, Col: 0},
		{Row: 0, Col: 4},
		{Row: 4, Col: 4},
		{Row: 4, Col: 0},
	}

	geom := MeasureBoundary(corners, false, 0)
	if geom.Perimeter != 12 {
		t.Errorf("open Perimeter: got %f, want 12", geom.Perimeter)
	}
	if geom.Closed {
		t.Error("Closed should be false")
	}
}

func TestMeasureBoundary_CounterClockwise(t *testing.T) {
	cells := []livewire.Cell{
		{Row: 0, Col: 0},
		{Row: 4, Col: 0},
		{Row: 4, Col: 4},
		{Row: 0, Col: 4},
	}
	geom := MeasureBoundary(cells, true, 0)
	if geom.Clockwise {
		t.Error("reversed square should be counter-clockwise")
	}
	if geom.Area != 16 {
		t.Errorf("Area should not depend on winding: got %f", geom.Area)
	}
}

func TestMeasureBoundary_Simplify(t *testing.T) {
	boundary := squareBoundary(0, 0, 6, 6)

	geom := MeasureBoundary(boundary, true, 0.5)
	if geom.Tolerance != 0.5 {
		t.Errorf("Tolerance: got %f, want 0.5", geom.Tolerance)
	}
	if n := len(geom.Simplified); n < 4 || n > 5 {
		t.Fatalf("Simplified: got %d points, want the 4 corners (plus closure)", n)
	}
	corners := map[Point]bool{{0, 0}: true, {6, 0}: true, {6, 6}: true, {0, 6}: true}
	for _, p := range geom.Simplified {
		if !corners[p] {
			t.Errorf("simplified point %+v is not a corner", p)
		}
	}
}

func TestMeasureBoundary_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		cells []livewire.Cell
	}{
		{"empty", nil},
		{"single", []livewire.Cell{{Row: 3, Col: 3}}},
		{"pair", []livewire.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geom := MeasureBoundary(tt.cells, true, 0)
			if geom.Area != 0 {
				t.Errorf("Area: got %f, want 0", geom.Area)
			}
			if geom.Points != len(tt.cells) {
				t.Errorf("Points: got %d, want %d", geom.Points, len(tt.cells))
			}
		})
	}
}

func TestCellsToPoints(t *testing.T) {
	points := CellsToPoints([]livewire.Cell{{Row: 1, Col: 2}, {Row: 3, Col: 4}})
	if len(points) != 2 || points[0] != (Point{X: 2, Y: 1}) || points[1] != (Point{X: 4, Y: 3}) {
		t.Errorf("CellsToPoints: got %+v", points)
	}
}

func TestBoundaryRing(t *testing.T) {
	ring := BoundaryRing([]livewire.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}})
	if len(ring) != 4 {
		t.Fatalf("ring length: got %d, want 4", len(ring))
	}
	if ring[0] != ring[3] {
		t.Error("ring should be closed")
	}
}
