package imaging

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
)

// Point represents a 2D point in image pixel space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region is a rectangle with (X1,Y1) inclusive and (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// BoundaryGeometry summarizes a boundary as a polygon.
type BoundaryGeometry struct {
	Points     int     `json:"points"`
	Perimeter  float64 `json:"perimeter_pixels"`
	Area       float64 `json:"area_pixels"`
	Bounds     Region  `json:"bounds"`
	Clockwise  bool    `json:"clockwise"`
	Closed     bool    `json:"closed"`
	CentroidX  float64 `json:"centroid_x"`
	CentroidY  float64 `json:"centroid_y"`
	Tolerance  float64 `json:"tolerance,omitempty"`
	Simplified []Point `json:"simplified,omitempty"`
}

// CellsToPoints converts boundary cells to x/y points.
func CellsToPoints(cells []livewire.Cell) []Point {
	points := make([]Point, len(cells))
	for i, c := range cells {
		points[i] = Point{X: c.Col, Y: c.Row}
	}
	return points
}

// BoundaryRing converts boundary cells to a closed orb ring (x = column,
// y = row). The first point is repeated at the end.
func BoundaryRing(cells []livewire.Cell) orb.Ring {
	ring := make(orb.Ring, 0, len(cells)+1)
	for _, c := range cells {
		ring = append(ring, orb.Point{float64(c.Col), float64(c.Row)})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// MeasureBoundary computes perimeter, enclosed area, bounds, centroid and
// winding of a boundary treated as a closed polygon.
//
// When tolerance is positive the ring is also simplified with
// Douglas-Peucker and returned in Simplified. Area and centroid are zero
// for boundaries with fewer than three nodes. Y grows downward, so
// Clockwise refers to the on-screen winding.
func MeasureBoundary(cells []livewire.Cell, closed bool, tolerance float64) *BoundaryGeometry {
	geom := &BoundaryGeometry{
		Points: len(cells),
		Bounds: cellBounds(cells),
		Closed: closed,
	}
	if len(cells) == 0 {
		return geom
	}

	ring := BoundaryRing(cells)
	if closed {
		geom.Perimeter = round2(planar.Length(ring))
	} else {
		geom.Perimeter = round2(planar.Length(orb.LineString(ring[:len(cells)])))
	}

	if len(cells) >= 3 {
		centroid, area := planar.CentroidArea(ring)
		geom.Area = round2(math.Abs(area))
		geom.CentroidX = round2(centroid[0])
		geom.CentroidY = round2(centroid[1])
		geom.Clockwise = ring.Orientation() == orb.CCW
	}

	if tolerance > 0 {
		geom.Tolerance = tolerance
		if simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ring.Clone()).(orb.Ring); ok {
			for _, p := range simplified {
				geom.Simplified = append(geom.Simplified, Point{X: int(p[0]), Y: int(p[1])})
			}
		}
	}
	return geom
}

// cellBounds returns the bounding rectangle of cells, exclusive on the
// right and bottom.
func cellBounds(cells []livewire.Cell) Region {
	if len(cells) == 0 {
		return Region{}
	}
	b := orb.MultiPoint(BoundaryRing(cells)).Bound()
	return Region{
		X1: int(b.Min[0]),
		Y1: int(b.Min[1]),
		X2: int(b.Max[0]) + 1,
		Y2: int(b.Max[1]) + 1,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
