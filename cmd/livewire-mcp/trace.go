package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/livewire-mcp/internal/imaging"
	"github.com/ironsheep/livewire-mcp/internal/livewire"
	"github.com/ironsheep/livewire-mcp/internal/logging"
	"github.com/ironsheep/livewire-mcp/internal/session"
)

var errNotClosed = errors.New("boundary did not close; add clicks or --close")

// traceSummary is the trace command's result.
type traceSummary struct {
	Image    string                    `json:"image"`
	Clicks   int                       `json:"clicks"`
	State    session.State             `json:"state"`
	Points   []imaging.Point           `json:"points"`
	Geometry *imaging.BoundaryGeometry `json:"geometry"`
	Written  []string                  `json:"written,omitempty"`
}

// parseClick parses "x,y" into a grid cell.
func parseClick(s string) (livewire.Cell, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return livewire.Cell{}, fmt.Errorf("invalid click %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return livewire.Cell{}, fmt.Errorf("invalid click x in %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return livewire.Cell{}, fmt.Errorf("invalid click y in %q: %w", s, err)
	}
	return livewire.Cell{Row: y, Col: x}, nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging)
	flags := cmd.Flags()

	rawClicks, _ := flags.GetStringArray("click")
	closeLoop, _ := flags.GetBool("close")
	overlayPath, _ := flags.GetString("overlay")
	segmentPath, _ := flags.GetString("segment")
	maskPath, _ := flags.GetString("mask")
	costMapPath, _ := flags.GetString("cost-map")
	tolerance, _ := flags.GetFloat64("tolerance")
	asJSON, _ := flags.GetBool("json")

	clicks := make([]livewire.Cell, 0, len(rawClicks)+1)
	for _, raw := range rawClicks {
		c, err := parseClick(raw)
		if err != nil {
			return err
		}
		clicks = append(clicks, c)
	}
	if len(clicks) == 0 {
		return errors.New("at least one --click is required")
	}

	path := args[0]
	cache := imaging.NewImageCache()
	img, err := cache.Load(path)
	if err != nil {
		return err
	}
	grid, err := cache.CostGrid(path, cfg.Cost)
	if err != nil {
		return err
	}

	sess := session.New(grid,
		session.WithSnapRadius(cfg.Trace.SnapRadius),
		session.WithLogger(logger),
	)

	var first livewire.Cell
	for i, c := range clicks {
		res, err := sess.Click(c.Row, c.Col)
		if err != nil {
			return fmt.Errorf("click %d at %d,%d: %w", i+1, c.Col, c.Row, err)
		}
		if i == 0 {
			first = res.Snapped
		}
		logger.Info("click",
			"n", i+1,
			"x", c.Col, "y", c.Row,
			"state", res.State.String(),
			"boundary", res.BoundaryLength)
	}
	if closeLoop && sess.State() == session.StateSeeded {
		if _, err := sess.Click(first.Row, first.Col); err != nil {
			return fmt.Errorf("closing click: %w", err)
		}
	}

	cells := sess.Boundary()
	state := sess.State()
	summary := &traceSummary{
		Image:    path,
		Clicks:   len(clicks),
		State:    state,
		Points:   imaging.CellsToPoints(cells),
		Geometry: imaging.MeasureBoundary(cells, state == session.StateClosed, tolerance),
	}

	if overlayPath != "" {
		var seed *livewire.Cell
		if s, ok := sess.Seed(); ok && state == session.StateSeeded {
			seed = &s
		}
		res, err := imaging.RenderOverlay(img, cells, nil, imaging.OverlayOptions{
			Seed:   seed,
			Closed: state == session.StateClosed,
		})
		if err != nil {
			return err
		}
		if err := writeImage(overlayPath, &res.ImageResult); err != nil {
			return err
		}
		summary.Written = append(summary.Written, overlayPath)
	}

	if costMapPath != "" {
		res, err := imaging.EncodeImage(imaging.CostMapImage(grid))
		if err != nil {
			return err
		}
		if err := writeImage(costMapPath, res); err != nil {
			return err
		}
		summary.Written = append(summary.Written, costMapPath)
	}

	if segmentPath != "" || maskPath != "" {
		if state != session.StateClosed {
			return errNotClosed
		}
		seg, err := imaging.ExtractSegment(img, cells)
		if err != nil {
			return err
		}
		if segmentPath != "" {
			if err := writeImage(segmentPath, &seg.Segment); err != nil {
				return err
			}
			summary.Written = append(summary.Written, segmentPath)
		}
		if maskPath != "" {
			if err := writeImage(maskPath, &seg.Mask); err != nil {
				return err
			}
			summary.Written = append(summary.Written, maskPath)
		}
	}

	return printSummary(cmd.OutOrStdout(), summary, asJSON)
}

func writeImage(path string, res *imaging.ImageResult) error {
	data, err := res.PNG()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printSummary(w io.Writer, s *traceSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	g := s.Geometry
	fmt.Fprintf(w, "%s: %d clicks, state %s\n", s.Image, s.Clicks, s.State)
	fmt.Fprintf(w, "  boundary:  %d points\n", g.Points)
	fmt.Fprintf(w, "  perimeter: %.2f px\n", g.Perimeter)
	if g.Closed {
		fmt.Fprintf(w, "  area:      %.2f px²\n", g.Area)
		fmt.Fprintf(w, "  centroid:  (%.2f, %.2f)\n", g.CentroidX, g.CentroidY)
	}
	fmt.Fprintf(w, "  bounds:    x %d..%d, y %d..%d\n", g.Bounds.X1, g.Bounds.X2, g.Bounds.Y1, g.Bounds.Y2)
	if len(g.Simplified) > 0 {
		fmt.Fprintf(w, "  simplified to %d points (tolerance %.2f)\n", len(g.Simplified), g.Tolerance)
	}
	for _, path := range s.Written {
		fmt.Fprintf(w, "  wrote %s\n", path)
	}
	return nil
}
