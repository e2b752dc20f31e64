package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
)

// Default overlay colours: cooled boundary cyan, live wire red, seed yellow.
const (
	DefaultBoundaryColor = "#00FFFF"
	DefaultLiveColor     = "#FF0000"
	DefaultSeedColor     = "#FFFF00"
)

// OverlayOptions controls RenderOverlay.
type OverlayOptions struct {
	BoundaryColor string
	LiveColor     string
	SeedColor     string
	// Thickness is the square brush size in pixels; values below 1 draw
	// 1-pixel lines.
	Thickness int
	// Seed, when set, is marked with a 3×3 block.
	Seed *livewire.Cell
	// Closed draws the segment from the last boundary node back to the first.
	Closed bool
}

// ImageResult is an encoded PNG together with its size.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// PNG returns the decoded PNG bytes.
func (r *ImageResult) PNG() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.ImageBase64)
}

// OverlayResult is the rendered overlay plus the number of drawn nodes.
type OverlayResult struct {
	ImageResult
	BoundaryPoints int `json:"boundary_points"`
	LivePoints     int `json:"live_points"`
}

// RenderOverlay draws the cooled boundary and the live path on a copy of img.
//
// Cells are in image pixel space relative to img.Bounds().Min. Consecutive
// cells are joined by straight lines, so sparse or simplified paths render
// as polylines. Colours are "#RRGGBB" or "#RRGGBBAA"; unparseable colours
// fall back to the defaults.
func RenderOverlay(img image.Image, boundary, live []livewire.Cell, opts OverlayOptions) (*OverlayResult, error) {
	canvas := imaging.Clone(img)

	boundaryColor := parseColor(opts.BoundaryColor, DefaultBoundaryColor)
	DrawPath(canvas, boundary, boundaryColor, opts.Thickness)
	if opts.Closed && len(boundary) > 2 {
		DrawPath(canvas, []livewire.Cell{boundary[len(boundary)-1], boundary[0]}, boundaryColor, opts.Thickness)
	}
	DrawPath(canvas, live, parseColor(opts.LiveColor, DefaultLiveColor), opts.Thickness)

	if opts.Seed != nil {
		seedColor := parseColor(opts.SeedColor, DefaultSeedColor)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				plot(canvas, opts.Seed.Col+dx, opts.Seed.Row+dy, seedColor)
			}
		}
	}

	encoded, err := EncodeImage(canvas)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		ImageResult:    *encoded,
		BoundaryPoints: len(boundary),
		LivePoints:     len(live),
	}, nil
}

// DrawPath joins consecutive cells with Bresenham lines drawn with a square
// brush. Pixels outside dst are skipped.
func DrawPath(dst *image.NRGBA, cells []livewire.Cell, c color.Color, thickness int) {
	if len(cells) == 1 {
		brush(dst, cells[0].Col, cells[0].Row, c, thickness)
		return
	}
	for i := 0; i+1 < len(cells); i++ {
		a, b := cells[i], cells[i+1]
		line(dst, a.Col, a.Row, b.Col, b.Row, c, thickness)
	}
}

func line(dst *image.NRGBA, x0, y0, x1, y1 int, c color.Color, thickness int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		brush(dst, x0, y0, c, thickness)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func brush(dst *image.NRGBA, x, y int, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	off := (thickness - 1) / 2
	for dy := 0; dy < thickness; dy++ {
		for dx := 0; dx < thickness; dx++ {
			plot(dst, x-off+dx, y-off+dy, c)
		}
	}
}

func plot(dst *image.NRGBA, x, y int, c color.Color) {
	if (image.Point{X: x, Y: y}).In(dst.Bounds()) {
		dst.Set(x, y, c)
	}
}

// parseColor parses "#RRGGBB" or "#RRGGBBAA". On failure the fallback,
// which must be valid, is used.
func parseColor(hex, fallback string) color.Color {
	if c, err := parseHexColor(hex); err == nil {
		return c
	}
	c, _ := parseHexColor(fallback)
	return c
}

func parseHexColor(hex string) (color.Color, error) {
	alpha := uint8(255)
	if len(hex) == 9 {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// EncodeImage encodes img as a base64 PNG.
func EncodeImage(img image.Image) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
