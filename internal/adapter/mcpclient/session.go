package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/toolschema"
)

// Session is one live connection to the Tool Host plus the descriptors it
// last reported.
type Session struct {
	cs *mcpsdk.ClientSession

	mu     sync.RWMutex
	tools  map[string]domain.ToolDescriptor
	listed bool
	closed bool
}

func newSession(cs *mcpsdk.ClientSession) *Session {
	return &Session{cs: cs}
}

// ListTools queries the Tool Host for its registry. Every call goes to the
// host; the result is kept only to check later calls against it.
func (s *Session) ListTools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	var raw []*mcpsdk.Tool
	for tool, err := range s.cs.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("%w: list tools: %w", domain.ErrProtocol, err)
		}
		raw = append(raw, tool)
	}

	descriptors, err := toDescriptors(raw)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]domain.ToolDescriptor, len(descriptors))
	for _, d := range descriptors {
		byName[d.Name] = d
	}
	s.mu.Lock()
	s.tools = byName
	s.listed = true
	s.mu.Unlock()

	return descriptors, nil
}

// Descriptor returns the last listed descriptor for name.
func (s *Session) Descriptor(name string) (domain.ToolDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.tools[name]
	return d, ok
}

// CallTool invokes a tool. When the session has listed tools, unknown
// names and arguments that break the tool's input schema are rejected
// without a round trip. A result the host flags as an error is returned
// together with an ErrToolExecution error.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*domain.ToolResult, error) {
	s.mu.RLock()
	descriptor, known := s.tools[name]
	listed := s.listed
	s.mu.RUnlock()

	if listed {
		if !known {
			return nil, fmt.Errorf("%w: %q", domain.ErrToolNotFound, name)
		}
		if err := toolschema.Validate(descriptor.InputSchema, args); err != nil {
			return nil, err
		}
	}
	if args == nil {
		args = map[string]any{}
	}

	res, err := s.cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, classifyCallError(name, err)
	}

	result := toToolResult(res)
	if result.IsError {
		msg := result.Text()
		if msg == "" {
			msg = "tool reported an error"
		}
		return result, fmt.Errorf("%w: %s", domain.ErrToolExecution, msg)
	}
	return result, nil
}

// Close releases the transport. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.cs.Close()
}

func toDescriptors(tools []*mcpsdk.Tool) ([]domain.ToolDescriptor, error) {
	seen := make(map[string]bool, len(tools))
	out := make([]domain.ToolDescriptor, 0, len(tools))
	for _, tool := range tools {
		if tool == nil || strings.TrimSpace(tool.Name) == "" {
			return nil, fmt.Errorf("%w: tool without a name", domain.ErrProtocol)
		}
		if seen[tool.Name] {
			return nil, fmt.Errorf("%w: duplicate tool %q", domain.ErrProtocol, tool.Name)
		}
		seen[tool.Name] = true

		var schema json.RawMessage
		if tool.InputSchema != nil {
			data, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("%w: schema of %q: %w", domain.ErrProtocol, tool.Name, err)
			}
			schema = data
		}
		out = append(out, domain.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}
	return out, nil
}

func toToolResult(res *mcpsdk.CallToolResult) *domain.ToolResult {
	out := &domain.ToolResult{}
	if res == nil {
		return out
	}
	out.IsError = res.IsError
	for _, c := range res.Content {
		if text, ok := c.(*mcpsdk.TextContent); ok {
			out.Parts = append(out.Parts, domain.ContentPart{Kind: domain.ContentKindText, Text: text.Text})
			continue
		}
		out.Parts = append(out.Parts, domain.ContentPart{Kind: domain.ContentKindOther})
	}
	return out
}

func classifyCallError(name string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, mcpsdk.ErrConnectionClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	case strings.Contains(err.Error(), "unknown tool"):
		return fmt.Errorf("%w: %q: %w", domain.ErrToolNotFound, name, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrToolExecution, err)
}

func logCloseError(endpoint string, err error) {
	log.Printf("WARN: failed to close tool host session %s: %v", endpoint, err)
}
