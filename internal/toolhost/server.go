// Package toolhost exposes a tool registry as an MCP server.
package toolhost

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pandu992003/weather-project-copy2/internal/tools"
)

const (
	// SSEPath serves the SSE transport; the message endpoint shares the path.
	SSEPath = "/mcp/sse"
	// StreamablePath serves the streamable HTTP transport.
	StreamablePath = "/mcp"
)

// Server wraps an MCP server built from a registry.
type Server struct {
	registry *tools.Registry
	mcp      *mcpsdk.Server
}

// NewServer creates an MCP server exposing every tool in reg. Tools are
// snapshotted at construction.
func NewServer(reg *tools.Registry, name, version string) *Server {
	s := &Server{
		registry: reg,
		mcp:      mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: version}, nil),
	}
	for _, tool := range reg.List() {
		s.mcp.AddTool(&mcpsdk.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		}, s.handle(tool.Name))
	}
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpsdk.Server {
	return s.mcp
}

// handle adapts a registry tool to an MCP tool handler. Handler errors are
// reported as error results, not protocol faults.
func (s *Server) handle(name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args []byte
		if req.Params != nil {
			args = req.Params.Arguments
		}
		out, err := s.registry.Execute(ctx, name, args)
		if err != nil {
			log.Printf("WARN: tool %s failed: %v", name, err)
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: out}},
		}, nil
	}
}

// RegisterRoutes mounts the MCP transports and a health check on e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	getServer := func(*http.Request) *mcpsdk.Server { return s.mcp }

	e.GET("/health", s.Health)
	e.Any(SSEPath, echo.WrapHandler(mcpsdk.NewSSEHandler(getServer, nil)))
	e.Any(StreamablePath, echo.WrapHandler(mcpsdk.NewStreamableHTTPHandler(getServer, nil)))
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	names := make([]string, 0)
	for _, tool := range s.registry.List() {
		names = append(names, tool.Name)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  names,
	})
}

// ServeStdio serves the MCP server over stdin/stdout until ctx is done or
// the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcpsdk.StdioTransport{})
}
