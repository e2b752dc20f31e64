package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"

	"github.com/ironsheep/livewire-mcp/internal/livewire"
)

// ImageCache provides thread-safe caching of decoded images and of the cost
// grids derived from them.
//
// Images are keyed by the exact path string passed to Load. Cost grids are
// keyed by path and CostOptions, so re-tracing the same image with the same
// weights skips feature extraction entirely.
//
// # Memory Management
//
// Entries stay cached until Evict or Clear. A cost grid holds 8 bytes per
// pixel on top of the decoded image.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	costs  map[costKey]*livewire.CostGrid
}

type costKey struct {
	path string
	opts CostOptions
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
		costs:  make(map[costKey]*livewire.CostGrid),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
// PNG, JPEG and GIF are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// CostGrid returns the cost grid for the image at path under opts, building
// it with BuildCostGrid on first use.
func (c *ImageCache) CostGrid(path string, opts CostOptions) (*livewire.CostGrid, error) {
	key := costKey{path: path, opts: opts}

	c.mu.RLock()
	if grid, ok := c.costs[key]; ok {
		c.mu.RUnlock()
		return grid, nil
	}
	c.mu.RUnlock()

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	grid, err := BuildCostGrid(img, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.costs[key] = grid
	c.mu.Unlock()

	return grid, nil
}

// Clear removes every cached image and cost grid.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.costs = make(map[costKey]*livewire.CostGrid)
	c.mu.Unlock()
}

// Evict removes the image at path and all cost grids derived from it.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for key := range c.costs {
		if key.path == path {
			delete(c.costs, key)
		}
	}
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and reports its size,
// format (from the file extension), alpha channel and file size.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch filepath.Ext(path) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image, loading it through the
// cache if needed.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
