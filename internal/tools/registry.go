// Package tools holds the Tool Host's registry of named tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// HandlerFunc runs one tool. The returned text becomes the tool's output.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is a registered tool: its descriptor and its handler.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     HandlerFunc
}

// Registry stores tools keyed by name, in registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a new tool.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("handler is required for %s", tool.Name)
	}
	if tool.InputSchema == nil {
		tool.InputSchema = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool already registered: %s", tool.Name)
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// MustRegister adds a tool or panics.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute runs the tool registered under name.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	if name == "" {
		return "", fmt.Errorf("tool name is required")
	}
	tool, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return tool.Handler(ctx, args)
}
