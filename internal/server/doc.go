// Package server implements the MCP (Model Context Protocol) server for
// live-wire boundary tracing.
//
// The server lets an MCP client trace object outlines interactively: load an
// image, click near its edges and receive the minimum-cost boundary between
// clicks, until the boundary closes and the enclosed segment can be cut out.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Setup:
//   - image_dimensions: Get width and height of any image
//   - livewire_load: Load an image, build its cost map, start a session
//   - livewire_cost_map: Render the cost map
//
// Tracing:
//   - livewire_snap: Preview where a click snaps to
//   - livewire_click: Seed, extend or close the boundary
//   - livewire_preview: Live path from a cursor to the seed
//   - livewire_clear: Start over
//
// Output:
//   - livewire_boundary: Boundary points and geometry
//   - livewire_overlay: Image with boundary and live path drawn
//   - livewire_segment: Cut-out of the enclosed region
//
// All coordinates are image pixels with x to the right and y down.
//
// # Sessions
//
// One image is traced at a time. livewire_load replaces the active session;
// decoded images and cost maps stay cached for the life of the process, so
// reloading an image with the same weights is immediate.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
