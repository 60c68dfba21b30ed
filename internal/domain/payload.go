package domain

import "encoding/json"

// TurnStartedPayload is the payload for turn_started event.
type TurnStartedPayload struct {
	SessionID string `json:"session_id"`
	Endpoint  string `json:"endpoint"`
}

// UserInputPayload is the payload for user_input event.
type UserInputPayload struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

// ToolsListedPayload is the payload for tools_listed event.
type ToolsListedPayload struct {
	Tools []string `json:"tools"`
}

// TurnDonePayload is the payload for turn_done event.
type TurnDonePayload struct {
	ModelCalls   int    `json:"model_calls"`
	ToolCalls    int    `json:"tool_calls"`
	FinalMessage string `json:"final_message,omitempty"`
}

// TurnFailedPayload is the payload for turn_failed event.
type TurnFailedPayload struct {
	State   TurnState `json:"state"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// LLMCallStartedPayload is the payload for llm_call_started event.
type LLMCallStartedPayload struct {
	RequestID string `json:"request_id"`
	Model     string `json:"model"`
	Tools     int    `json:"tools"`
	Messages  int    `json:"messages"`
}

// LLMCallDonePayload is the payload for llm_call_done event.
type LLMCallDonePayload struct {
	RequestID        string `json:"request_id"`
	Model            string `json:"model"`
	LatencyMs        int64  `json:"latency_ms"`
	ToolCalls        int    `json:"tool_calls"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	TotalTokens      int    `json:"total_tokens,omitempty"`
	Error            string `json:"error,omitempty"`
}

// PolicyDecisionPayload is the payload for policy_decision event.
type PolicyDecisionPayload struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Decision   string `json:"decision"`
	Reason     string `json:"reason,omitempty"`
}

// ToolCallStartedPayload is the payload for tool_call_started event.
type ToolCallStartedPayload struct {
	ToolCallID string          `json:"tool_call_id"`
	ToolName   string          `json:"tool_name"`
	Args       json.RawMessage `json:"args,omitempty"`
}

// ToolResultPayload is the payload for tool_result event.
type ToolResultPayload struct {
	ToolCallID string         `json:"tool_call_id"`
	Status     ToolCallStatus `json:"status"`
	Content    string         `json:"content"`
	Error      string         `json:"error,omitempty"`
}
