package domain

import (
	"encoding/json"
	"time"
)

// Message is a single unit of a conversation. ToolCalls is only set on
// assistant messages and ToolCallID only on tool messages.
type Message struct {
	MessageID  string     `json:"message_id,omitempty"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToolCall is a model-issued request to invoke one tool. Arguments holds
// the raw text the model produced; it is not guaranteed to be valid JSON.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message, optionally carrying tool calls.
func AssistantMessage(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolMessage builds a tool-role message answering the given call id.
func ToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// HasToolCalls reports whether the message asks for tool invocations.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	if m.ToolCalls != nil {
		calls := make([]ToolCall, len(m.ToolCalls))
		copy(calls, m.ToolCalls)
		m.ToolCalls = calls
	}
	return m
}

// ToolCallNames lists the tool names requested by the message, in order.
func (m Message) ToolCallNames() []string {
	names := make([]string, 0, len(m.ToolCalls))
	for _, tc := range m.ToolCalls {
		names = append(names, tc.Name)
	}
	return names
}

// RawArguments returns the call arguments as raw JSON when they parse,
// and a JSON string holding the original text otherwise.
func (tc ToolCall) RawArguments() json.RawMessage {
	if json.Valid([]byte(tc.Arguments)) {
		return json.RawMessage(tc.Arguments)
	}
	quoted, _ := json.Marshal(tc.Arguments)
	return quoted
}
