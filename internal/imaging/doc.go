// Package imaging turns images into livewire cost grids and turns traced
// boundaries back into images.
//
// It plays the roles that sit around the tracing core: the feature extractor
// (BuildCostGrid), the renderer (RenderOverlay, CostMapImage) and the segment
// extractor (BoundaryMask, ExtractSegment, MeasureBoundary).
//
// # Coordinate System
//
// Pixel coordinates are 0-based relative to the image bounds, with (0,0) at
// the top-left. A livewire.Cell maps to pixels as X = Col, Y = Row. For
// regions, (X1,Y1) is inclusive and (X2,Y2) exclusive.
//
// # Cost Model
//
// Cost grids use the 0-255 range: 0 on the strongest edges, 255 in flat
// regions. See BuildCostGrid and DefaultCostOptions.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and may run concurrently on different images.
package imaging
