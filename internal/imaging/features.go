package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
)

// FeatureWeights scales each normalized feature before they are summed into
// the edge strength of a pixel.
type FeatureWeights struct {
	// Gradient weights the Sobel gradient magnitude.
	Gradient float64 `json:"gradient"`
	// Edge weights the binary Canny edge map.
	Edge float64 `json:"edge"`
	// Direction weights the gradient orientation coherence.
	Direction float64 `json:"direction"`
	// Color weights the CIE Lab contrast to the right and lower neighbours.
	Color float64 `json:"color"`
}

// CostOptions controls how an image is turned into a cost grid.
type CostOptions struct {
	Weights FeatureWeights `json:"weights"`

	// CannyLow and CannyHigh are hysteresis thresholds on a 0-255 scale.
	CannyLow  int `json:"canny_low"`
	CannyHigh int `json:"canny_high"`

	// BlurRadius is the Gaussian blur radius applied before gradients are
	// taken. Zero disables blurring.
	BlurRadius float64 `json:"blur_radius"`
}

// ErrInvalidCostOptions indicates weights, thresholds or a blur radius that
// cannot produce a cost grid.
var ErrInvalidCostOptions = errors.New("invalid cost options")

// Validate checks that every weight and the blur radius are finite and
// non-negative and that 0 <= CannyLow <= CannyHigh <= 255.
//
// Returns an error wrapping ErrInvalidCostOptions that names the first
// offending field.
func (o CostOptions) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"gradient weight", o.Weights.Gradient},
		{"edge weight", o.Weights.Edge},
		{"direction weight", o.Weights.Direction},
		{"color weight", o.Weights.Color},
		{"blur radius", o.BlurRadius},
	}
	for _, f := range fields {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative number, got %g", ErrInvalidCostOptions, f.name, f.v)
		}
	}
	if o.CannyLow < 0 || o.CannyHigh > 255 || o.CannyLow > o.CannyHigh {
		return fmt.Errorf("%w: Canny thresholds %d/%d, want 0 <= low <= high <= 255",
			ErrInvalidCostOptions, o.CannyLow, o.CannyHigh)
	}
	return nil
}

// DefaultCostOptions returns weights and thresholds tuned for photographs:
// gradient 0.80, Canny edges 0.25, direction 0.15, no colour contrast,
// Canny thresholds 15/45 and a radius-1 blur.
func DefaultCostOptions() CostOptions {
	return CostOptions{
		Weights: FeatureWeights{
			Gradient:  0.80,
			Edge:      0.25,
			Direction: 0.15,
		},
		CannyLow:   15,
		CannyHigh:  45,
		BlurRadius: 1.0,
	}
}

// FeatureMaps holds the per-pixel features of an image, each in [0,1] and
// indexed [y][x] relative to the image bounds.
type FeatureMaps struct {
	Width     int
	Height    int
	Gradient  [][]float64
	Edge      [][]float64
	Direction [][]float64
	Color     [][]float64
}

// ExtractFeatures computes the feature maps used by BuildCostGrid.
//
// # Algorithm
//
//  1. Grayscale conversion and Gaussian blur (bild).
//  2. Sobel X/Y on the blurred luminance. The gradient feature is the
//     magnitude sqrt(Gx² + Gy²), normalized so the strongest response in
//     the image is 1. Rising and falling edges score the same.
//  3. Direction coherence: the mean of cos²(θ - θn) over the 8 neighbours,
//     where θ is the gradient angle. Pixels along a straight edge score
//     near 1, flat pixels (zero magnitude) score 0. The measure ignores
//     the sign and the absolute orientation of the gradient.
//  4. Canny edges from the same gradients: non-maximum suppression followed
//     by double-threshold hysteresis.
//  5. Colour contrast (only when its weight is non-zero): the larger Lab
//     distance to the right and lower neighbours, normalized to the image
//     maximum.
func ExtractFeatures(img image.Image, opts CostOptions) *FeatureMaps {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var smooth image.Image = effect.Grayscale(img)
	if opts.BlurRadius > 0 {
		smooth = blur.Gaussian(smooth, opts.BlurRadius)
	}
	lum := grayPlane(smooth)

	magnitude, direction := sobelGradients(lum, width, height)
	edge := canny(magnitude, direction, width, height, opts.CannyLow, opts.CannyHigh)

	gradient := make([][]float64, height)
	for y := range gradient {
		gradient[y] = append([]float64(nil), magnitude[y]...)
	}
	normalize(gradient)

	maps := &FeatureMaps{
		Width:     width,
		Height:    height,
		Gradient:  gradient,
		Edge:      edge,
		Direction: coherence(magnitude, direction, width, height),
	}
	if opts.Weights.Color != 0 {
		maps.Color = colorContrast(img)
	}
	return maps
}

// BuildCostGrid converts an image into a livewire cost grid.
//
// Each pixel's edge strength is the weighted sum of its features, clamped
// to [0,1]; the base cost is the inverse, 255 × (1 - strength), rounded.
// Strong edges are therefore cheap to follow.
//
// Returns an error if the image has no pixels or opts fails Validate.
func BuildCostGrid(img image.Image, opts CostOptions) (*livewire.CostGrid, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot build cost grid: image has no pixels")
	}

	maps := ExtractFeatures(img, opts)
	w := opts.Weights

	values := make([][]int, maps.Height)
	for y := 0; y < maps.Height; y++ {
		values[y] = make([]int, maps.Width)
		for x := 0; x < maps.Width; x++ {
			s := w.Gradient*maps.Gradient[y][x] +
				w.Edge*maps.Edge[y][x] +
				w.Direction*maps.Direction[y][x]
			if maps.Color != nil {
				s += w.Color * maps.Color[y][x]
			}
			s = math.Max(0, math.Min(1, s))
			values[y][x] = int(math.Round(255 * (1 - s)))
		}
	}

	return livewire.NewCostGrid(values)
}

// CostMapImage renders a cost grid as a grayscale image, cheap cells dark.
// Costs above 255 saturate.
func CostMapImage(grid *livewire.CostGrid) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, grid.Width(), grid.Height()))
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			v, _ := grid.At(y, x)
			out.Pix[y*out.Stride+x] = uint8(min(v, 255))
		}
	}
	return out
}

// grayPlane reads an image into a [y][x] slice of luminance values in [0,1].
func grayPlane(img image.Image) [][]float64 {
	bounds := img.Bounds()
	plane := make([][]float64, bounds.Dy())
	for y := range plane {
		plane[y] = make([]float64, bounds.Dx())
		for x := range plane[y] {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			plane[y][x] = (0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)) / 255.0
		}
	}
	return plane
}

// normalize scales plane in place so its maximum becomes 1. A plane of
// zeros is left untouched.
func normalize(plane [][]float64) {
	var peak float64
	for _, row := range plane {
		for _, v := range row {
			peak = math.Max(peak, v)
		}
	}
	if peak == 0 {
		return
	}
	for _, row := range plane {
		for x := range row {
			row[x] /= peak
		}
	}
}

// sobelGradients returns the gradient magnitude and direction (radians) of
// a luminance plane. Borders are handled by clamping.
func sobelGradients(lum [][]float64, width, height int) (magnitude, direction [][]float64) {
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude = make([][]float64, height)
	direction = make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := lum[clamp(y+ky, 0, height-1)][clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}
	return magnitude, direction
}

// coherence scores how well each pixel's gradient orientation agrees with
// its neighbours'. Out-of-bounds and zero-magnitude neighbours add nothing.
func coherence(magnitude, direction [][]float64, width, height int) [][]float64 {
	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if magnitude[y][x] == 0 {
				continue
			}
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					ny, nx := y+ky, x+kx
					if (kx == 0 && ky == 0) || ny < 0 || ny >= height || nx < 0 || nx >= width {
						continue
					}
					if magnitude[ny][nx] == 0 {
						continue
					}
					c := math.Cos(direction[y][x] - direction[ny][nx])
					sum += c * c
				}
			}
			out[y][x] = sum / 8
		}
	}
	return out
}

// canny thins the gradient to 1-pixel ridges and keeps strong ridges plus
// weak ridges touching a strong one. The result holds 1 for edges, 0 elsewhere.
func canny(magnitude, direction [][]float64, width, height, low, high int) [][]float64 {
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[y][x-1], magnitude[y][x+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[y-1][x+1], magnitude[y+1][x-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[y-1][x], magnitude[y+1][x]
			default:
				n1, n2 = magnitude[y-1][x-1], magnitude[y+1][x+1]
			}
			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	lowThresh := float64(low) / 255.0
	highThresh := float64(high) / 255.0

	edges := make([][]float64, height)
	for y := 0; y < height; y++ {
		edges[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val == 0 {
				continue
			}
			if val >= highThresh {
				edges[y][x] = 1
				continue
			}
			if val < lowThresh {
				continue
			}
			for ky := -1; ky <= 1 && edges[y][x] == 0; ky++ {
				for kx := -1; kx <= 1; kx++ {
					if suppressed[clamp(y+ky, 0, height-1)][clamp(x+kx, 0, width-1)] >= highThresh {
						edges[y][x] = 1
						break
					}
				}
			}
		}
	}
	return edges
}

// colorContrast measures perceptual colour change around each pixel as the
// larger CIE Lab distance to its right and lower neighbours.
func colorContrast(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	lab := make([][]colorful.Color, height)
	for y := 0; y < height; y++ {
		lab[y] = make([]colorful.Color, width)
		for x := 0; x < width; x++ {
			c, _ := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			lab[y][x] = c
		}
	}

	plane := make([][]float64, height)
	for y := 0; y < height; y++ {
		plane[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var d float64
			if x+1 < width {
				d = lab[y][x].DistanceLab(lab[y][x+1])
			}
			if y+1 < height {
				d = math.Max(d, lab[y][x].DistanceLab(lab[y+1][x]))
			}
			plane[y][x] = d
		}
	}
	normalize(plane)
	return plane
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
