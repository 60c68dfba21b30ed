package domain

import (
	"encoding/json"
	"strings"
)

// ToolDescriptor describes one tool exposed by the Tool Host.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// FunctionSpec is a tool declaration in the completion endpoint's
// function-calling shape.
type FunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ContentKind tags a part of a tool result.
type ContentKind string

const (
	ContentKindText  ContentKind = "text"
	ContentKindOther ContentKind = "other"
)

// ContentPart is one typed item of a tool result.
type ContentPart struct {
	Kind ContentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
}

// ToolResult is what the Tool Host returned for one invocation.
type ToolResult struct {
	Parts   []ContentPart `json:"parts"`
	IsError bool          `json:"is_error,omitempty"`
}

// Text joins the text parts with newlines. Non-text parts are ignored.
func (r *ToolResult) Text() string {
	if r == nil {
		return ""
	}
	texts := make([]string, 0, len(r.Parts))
	for _, p := range r.Parts {
		if p.Kind == ContentKindText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
