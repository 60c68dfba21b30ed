package llm

import (
	"encoding/json"
	"fmt"
)

// Tool choice modes.
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// ChatCompletionRequest is a non-streaming completion request. ToolChoice
// is only sent together with Tools.
type ChatCompletionRequest struct {
	Model      string        `json:"model"`
	Messages   []ChatMessage `json:"messages"`
	Tools      []Tool        `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

// ChatMessage represents a chat message. Content is null on assistant
// messages that only carry tool calls.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Text returns the message content or "" when it is null.
func (m *ChatMessage) Text() string {
	if m == nil || m.Content == nil {
		return ""
	}
	return *m.Content
}

// Tool wraps a function declaration; Type is always "function".
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolCall is one function call requested by the assistant. Arguments is
// the raw text the model produced.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatCompletionResponse is the reply to a completion request. Only the
// first choice is used.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

type Choice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// Usage reports token counts; it is recorded on llm_call_done events.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse is the error body OpenAI-compatible endpoints return.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Message    string
	Type       string
}

func (e *StatusError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("completion endpoint returned %d: %s (%s)", e.StatusCode, e.Message, e.Type)
	}
	return fmt.Sprintf("completion endpoint returned %d: %s", e.StatusCode, e.Message)
}

// Model is one entry of GET /models. Name and ContextLength are
// OpenRouter extensions and may be empty elsewhere.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	ContextLength int    `json:"context_length,omitempty"`
	OwnedBy       string `json:"owned_by,omitempty"`
}

type ModelsResponse struct {
	Data []Model `json:"data"`
}
