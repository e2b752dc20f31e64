package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/livewire-mcp/internal/imaging"
	"github.com/ironsheep/livewire-mcp/internal/livewire"
	"github.com/ironsheep/livewire-mcp/internal/session"
)

var (
	errNoImage       = errors.New("no image loaded; call livewire_load first")
	errBoundaryOpen  = errors.New("boundary is not closed; keep clicking until it reaches the first seed")
	errUnknownOrder  = errors.New("unknown ordering")
	errMissingCoords = errors.New("x and y are required")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "livewire_load", "livewire_click").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool done", "tool", params.Name, "elapsed", time.Since(start))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Session setup
	case "livewire_load":
		return s.handleLoad(args)
	case "livewire_cost_map":
		return s.handleCostMap(args)

	// Tracing
	case "livewire_snap":
		return s.handleSnap(args)
	case "livewire_click":
		return s.handleClick(args)
	case "livewire_preview":
		return s.handlePreview(args)
	case "livewire_clear":
		return s.handleClear(args)

	// Output
	case "livewire_boundary":
		return s.handleBoundary(args)
	case "livewire_overlay":
		return s.handleOverlay(args)
	case "livewire_segment":
		return s.handleSegment(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// point is an optional x/y pair from tool arguments.
type point struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func (p point) cell() (livewire.Cell, error) {
	if p.X == nil || p.Y == nil {
		return livewire.Cell{}, errMissingCoords
	}
	return pixel(*p.X, *p.Y), nil
}

func (p point) set() bool { return p.X != nil && p.Y != nil }

func toPoint(c livewire.Cell) imaging.Point {
	return imaging.Point{X: c.Col, Y: c.Row}
}

// === Image Information ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Session Setup ===

type loadArgs struct {
	Path       string                  `json:"path"`
	Weights    *imaging.FeatureWeights `json:"weights"`
	CannyLow   *int                    `json:"canny_low"`
	CannyHigh  *int                    `json:"canny_high"`
	BlurRadius *float64                `json:"blur_radius"`
	SnapRadius *int                    `json:"snap_radius"`
	Ordering   string                  `json:"ordering"`
}

type loadResult struct {
	imaging.ImageInfo
	CostMin    int                 `json:"cost_min"`
	CostMax    int                 `json:"cost_max"`
	SnapRadius int                 `json:"snap_radius"`
	Ordering   string              `json:"ordering"`
	Options    imaging.CostOptions `json:"cost_options"`
	State      session.State       `json:"state"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.costOpts
	if a.Weights != nil {
		opts.Weights = *a.Weights
	}
	if a.CannyLow != nil {
		opts.CannyLow = *a.CannyLow
	}
	if a.CannyHigh != nil {
		opts.CannyHigh = *a.CannyHigh
	}
	if a.BlurRadius != nil {
		opts.BlurRadius = *a.BlurRadius
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	radius := s.snapRadius
	if a.SnapRadius != nil {
		radius = *a.SnapRadius
	}
	if radius < 0 {
		return nil, fmt.Errorf("snap_radius must not be negative, got %d", radius)
	}
	ordering, err := parseOrdering(a.Ordering)
	if err != nil {
		return nil, err
	}

	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	grid, err := s.cache.CostGrid(a.Path, opts)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCostGridBuild(time.Since(start))

	sess := session.New(grid,
		session.WithSnapRadius(radius),
		session.WithOrdering(ordering),
		session.WithLogger(s.logger.With("image", a.Path)),
		session.WithMetrics(s.metrics),
	)

	s.mu.Lock()
	s.active = &trace{path: a.Path, img: img, opts: opts, session: sess}
	s.mu.Unlock()

	s.logger.Info("image loaded", "path", a.Path, "width", info.Width, "height", info.Height)

	return &loadResult{
		ImageInfo:  *info,
		CostMin:    grid.Min(),
		CostMax:    grid.Max(),
		SnapRadius: sess.SnapRadius(),
		Ordering:   ordering.String(),
		Options:    opts,
		State:      sess.State(),
	}, nil
}

func parseOrdering(name string) (livewire.Ordering, error) {
	switch name {
	case "", livewire.OrderByCost.String():
		return livewire.OrderByCost, nil
	case livewire.OrderBySeedDistance.String():
		return livewire.OrderBySeedDistance, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownOrder, name)
	}
}

type costMapResult struct {
	imaging.ImageResult
	Path    string              `json:"path"`
	Options imaging.CostOptions `json:"cost_options"`
}

func (s *Server) handleCostMap(_ json.RawMessage) (interface{}, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodeImage(imaging.CostMapImage(t.session.Grid()))
	if err != nil {
		return nil, err
	}
	return &costMapResult{ImageResult: *encoded, Path: t.path, Options: t.opts}, nil
}

// === Tracing ===

type snapResult struct {
	Clicked imaging.Point `json:"clicked"`
	Snapped imaging.Point `json:"snapped"`
	Cost    int           `json:"cost"`
	Radius  int           `json:"radius"`
}

func (s *Server) handleSnap(args json.RawMessage) (interface{}, error) {
	var a point
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := a.cell()
	if err != nil {
		return nil, err
	}
	t, err := s.current()
	if err != nil {
		return nil, err
	}

	snapped, err := t.session.Snap(c.Row, c.Col)
	if err != nil {
		return nil, err
	}
	cost, _ := t.session.Grid().At(snapped.Row, snapped.Col)
	return &snapResult{
		Clicked: toPoint(c),
		Snapped: toPoint(snapped),
		Cost:    cost,
		Radius:  t.session.SnapRadius(),
	}, nil
}

type clickResult struct {
	Clicked        imaging.Point         `json:"clicked"`
	Snapped        imaging.Point         `json:"snapped"`
	State          session.State         `json:"state"`
	Closed         bool                  `json:"closed"`
	Segment        []imaging.Point       `json:"segment,omitempty"`
	BoundaryLength int                   `json:"boundary_length"`
	Expansion      *livewire.ExpandStats `json:"expansion,omitempty"`
	ElapsedMS      float64               `json:"elapsed_ms"`
}

func (s *Server) handleClick(args json.RawMessage) (interface{}, error) {
	var a point
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := a.cell()
	if err != nil {
		return nil, err
	}
	t, err := s.current()
	if err != nil {
		return nil, err
	}

	res, err := t.session.Click(c.Row, c.Col)
	if err != nil {
		return nil, err
	}
	return &clickResult{
		Clicked:        toPoint(res.Clicked),
		Snapped:        toPoint(res.Snapped),
		State:          res.State,
		Closed:         res.Closed,
		Segment:        imaging.CellsToPoints(res.Segment),
		BoundaryLength: res.BoundaryLength,
		Expansion:      res.Expansion,
		ElapsedMS:      float64(res.Elapsed.Microseconds()) / 1000,
	}, nil
}

type previewResult struct {
	State  session.State   `json:"state"`
	Points []imaging.Point `json:"points"`
	Length int             `json:"length"`
	Cost   *int64          `json:"cost,omitempty"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a point
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := a.cell()
	if err != nil {
		return nil, err
	}
	t, err := s.current()
	if err != nil {
		return nil, err
	}

	path, err := t.session.Preview(c.Row, c.Col)
	if err != nil {
		return nil, err
	}
	res := &previewResult{
		State:  t.session.State(),
		Points: imaging.CellsToPoints(path),
		Length: len(path),
	}
	if cost, err := t.session.PathCost(c.Row, c.Col); err == nil {
		res.Cost = &cost
	}
	return res, nil
}

type stateResult struct {
	State session.State `json:"state"`
}

func (s *Server) handleClear(_ json.RawMessage) (interface{}, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	t.session.Clear()
	return &stateResult{State: t.session.State()}, nil
}

// === Output ===

type boundaryArgs struct {
	Tolerance    float64 `json:"tolerance"`
	IncludeCosts bool    `json:"include_costs"`
}

type boundaryResult struct {
	State    session.State             `json:"state"`
	Points   []imaging.Point           `json:"points"`
	Costs    []int64                   `json:"costs,omitempty"`
	Geometry *imaging.BoundaryGeometry `json:"geometry"`
}

func (s *Server) handleBoundary(args json.RawMessage) (interface{}, error) {
	var a boundaryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.current()
	if err != nil {
		return nil, err
	}

	nodes := t.session.BoundaryNodes()
	state := t.session.State()
	cells := make([]livewire.Cell, len(nodes))
	var costs []int64
	if a.IncludeCosts {
		costs = make([]int64, len(nodes))
	}
	for i, n := range nodes {
		cells[i] = n.Cell
		if costs != nil {
			costs[i] = n.Cost
		}
	}
	return &boundaryResult{
		State:    state,
		Points:   imaging.CellsToPoints(cells),
		Costs:    costs,
		Geometry: imaging.MeasureBoundary(cells, state == session.StateClosed, a.Tolerance),
	}, nil
}

type overlayArgs struct {
	Cursor        point  `json:"cursor"`
	Thickness     int    `json:"thickness"`
	BoundaryColor string `json:"boundary_color"`
	LiveColor     string `json:"live_color"`
	SeedColor     string `json:"seed_color"`
}

func (s *Server) handleOverlay(args json.RawMessage) (interface{}, error) {
	var a overlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	t, err := s.current()
	if err != nil {
		return nil, err
	}

	state := t.session.State()
	opts := imaging.OverlayOptions{
		BoundaryColor: a.BoundaryColor,
		LiveColor:     a.LiveColor,
		SeedColor:     a.SeedColor,
		Thickness:     a.Thickness,
		Closed:        state == session.StateClosed,
	}
	if seed, ok := t.session.Seed(); ok && state == session.StateSeeded {
		opts.Seed = &seed
	}

	var live []livewire.Cell
	if a.Cursor.set() && state == session.StateSeeded {
		c, _ := a.Cursor.cell()
		if live, err = t.session.Preview(c.Row, c.Col); err != nil {
			return nil, err
		}
	}

	return imaging.RenderOverlay(t.img, t.session.Boundary(), live, opts)
}

func (s *Server) handleSegment(_ json.RawMessage) (interface{}, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	if t.session.State() != session.StateClosed {
		return nil, errBoundaryOpen
	}
	return imaging.ExtractSegment(t.img, t.session.Boundary())
}
