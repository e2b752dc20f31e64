package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func boolProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

func pointSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": intProp("X coordinate (0-based, from left)"),
			"y": intProp("Y coordinate (0-based, from top)"),
		},
		"required": []string{"x", "y"},
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image information
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Session setup
		{
			Name: "livewire_load",
			Description: "Load an image for boundary tracing. Builds the edge cost map from gradient, Canny edge, " +
				"direction and optional colour features and starts a new, empty tracing session. " +
				"Replaces any previous session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the image file"),
					"weights": map[string]interface{}{
						"type":        "object",
						"description": "Feature weights. Defaults: gradient 0.80, edge 0.25, direction 0.15, color 0",
						"properties": map[string]interface{}{
							"gradient":  numberProp("Weight of the Sobel gradient magnitude"),
							"edge":      numberProp("Weight of the Canny edge map"),
							"direction": numberProp("Weight of the gradient orientation coherence"),
							"color":     numberProp("Weight of the Lab colour contrast"),
						},
					},
					"canny_low":   intProp("Canny low threshold (0-255). Default 15"),
					"canny_high":  intProp("Canny high threshold (0-255). Default 45"),
					"blur_radius": numberProp("Gaussian blur radius before gradients. Default 1.0, 0 disables"),
					"snap_radius": intProp("Clicks snap to the cheapest pixel within this radius. Default 7"),
					"ordering": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"cost", "seed-distance"},
						"description": "Wavefront ordering. Default cost",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "livewire_cost_map",
			Description: "Render the cost map of the loaded image as a grayscale PNG. Dark pixels are cheap to trace along.",
			InputSchema: emptySchema(),
		},

		// Tracing
		{
			Name:        "livewire_snap",
			Description: "Show which pixel a click at (x, y) would snap to, without changing the session.",
			InputSchema: pointSchema(),
		},
		{
			Name: "livewire_click",
			Description: "Click at (x, y). The first click places the seed. Each further click commits the " +
				"minimum-cost path from the click back to the previous seed and re-seeds there. " +
				"A path that reaches the first seed closes the boundary.",
			InputSchema: pointSchema(),
		},
		{
			Name:        "livewire_preview",
			Description: "Return the live path from cursor (x, y) back to the current seed without committing it.",
			InputSchema: pointSchema(),
		},
		{
			Name:        "livewire_clear",
			Description: "Discard the boundary and seed and start over on the same image.",
			InputSchema: emptySchema(),
		},

		// Output
		{
			Name:        "livewire_boundary",
			Description: "Return the committed boundary points with perimeter, enclosed area, bounds and centroid.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tolerance":     numberProp("Optional Douglas-Peucker tolerance in pixels for a simplified outline"),
					"include_costs": boolProp("Also return the cumulative path cost recorded at each boundary point"),
				},
			},
		},
		{
			Name:        "livewire_overlay",
			Description: "Render the image with the committed boundary and, given a cursor, the live path drawn on top.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cursor":         pointSchema(),
					"thickness":      intProp("Line thickness in pixels. Default 1"),
					"boundary_color": stringProp("Boundary colour as #RRGGBB or #RRGGBBAA. Default #00FFFF"),
					"live_color":     stringProp("Live path colour. Default #FF0000"),
					"seed_color":     stringProp("Seed marker colour. Default #FFFF00"),
				},
			},
		},
		{
			Name:        "livewire_segment",
			Description: "Cut out the region enclosed by a closed boundary as a transparent PNG, plus its binary mask.",
			InputSchema: emptySchema(),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
