package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
)

// ErrBoundaryTooShort indicates a boundary with fewer than three nodes,
// which cannot enclose a region.
var ErrBoundaryTooShort = errors.New("boundary needs at least 3 points to enclose a region")

// maskThreshold is the coverage above which an anti-aliased mask pixel
// counts as inside.
const maskThreshold = 128

// SegmentResult contains the pixels enclosed by a closed boundary, cropped
// to the boundary's bounding box, and the full-size binary mask.
type SegmentResult struct {
	Segment    ImageResult `json:"segment"`
	Mask       ImageResult `json:"mask"`
	Bounds     Region      `json:"bounds"`
	MaskPixels int         `json:"mask_pixels"`
}

// BoundaryMask rasterizes the polygon described by boundary into a
// width×height mask. Vertices are placed at pixel centres and the polygon is
// closed implicitly. Boundary pixels themselves are always inside.
func BoundaryMask(width, height int, boundary []livewire.Cell) (*image.Alpha, error) {
	if len(boundary) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrBoundaryTooShort, len(boundary))
	}

	z := vector.NewRasterizer(width, height)
	z.DrawOp = draw.Src
	z.MoveTo(float32(boundary[0].Col)+0.5, float32(boundary[0].Row)+0.5)
	for _, c := range boundary[1:] {
		z.LineTo(float32(c.Col)+0.5, float32(c.Row)+0.5)
	}
	z.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for i, a := range mask.Pix {
		if a >= maskThreshold {
			mask.Pix[i] = 0xff
		} else {
			mask.Pix[i] = 0
		}
	}
	for _, c := range boundary {
		if c.Col >= 0 && c.Col < width && c.Row >= 0 && c.Row < height {
			mask.Pix[c.Row*mask.Stride+c.Col] = 0xff
		}
	}
	return mask, nil
}

// ExtractSegment copies the pixels of img inside the closed boundary onto a
// transparent canvas and crops it to the boundary's bounding box.
func ExtractSegment(img image.Image, boundary []livewire.Cell) (*SegmentResult, error) {
	src := imaging.Clone(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()

	mask, err := BoundaryMask(width, height, boundary)
	if err != nil {
		return nil, err
	}

	segment := image.NewNRGBA(src.Bounds())
	draw.DrawMask(segment, segment.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Src)

	count := 0
	for _, a := range mask.Pix {
		if a != 0 {
			count++
		}
	}

	region := cellBounds(boundary)
	cropped := imaging.Crop(segment, image.Rect(region.X1, region.Y1, region.X2, region.Y2))

	seg, err := EncodeImage(cropped)
	if err != nil {
		return nil, err
	}
	m, err := EncodeImage(mask)
	if err != nil {
		return nil, err
	}
	return &SegmentResult{
		Segment:    *seg,
		Mask:       *m,
		Bounds:     region,
		MaskPixels: count,
	}, nil
}
