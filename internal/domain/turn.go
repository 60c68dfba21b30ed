package domain

import (
	"encoding/json"
	"time"
)

// Turn is the ledger record of one user input through to a settled reply.
type Turn struct {
	TurnID     string          `json:"turn_id"`
	SessionID  string          `json:"session_id"`
	Status     TurnStatus      `json:"status"`
	State      TurnState       `json:"state"`
	ModelCalls int             `json:"model_calls"`
	StartedAt  time.Time       `json:"started_at"`
	EndedAt    *time.Time      `json:"ended_at,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
}

// ToolCallRecord is the ledger record of one tool invocation within a turn.
type ToolCallRecord struct {
	ToolCallID  string          `json:"tool_call_id"`
	TurnID      string          `json:"turn_id"`
	Seq         int             `json:"seq"`
	ToolName    string          `json:"tool_name"`
	Status      ToolCallStatus  `json:"status"`
	Args        json.RawMessage `json:"args"`
	Result      string          `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Event represents a trace event for replay.
type Event struct {
	EventID string          `json:"event_id"`
	TurnID  string          `json:"turn_id"`
	Ts      int64           `json:"ts"` // Unix milliseconds
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TurnResult is what a completed (or failed) turn hands back to its caller.
type TurnResult struct {
	TurnID     string    `json:"turn_id"`
	SessionID  string    `json:"session_id"`
	Messages   []Message `json:"messages"`
	ModelCalls int       `json:"model_calls"`
	ToolCalls  int       `json:"tool_calls"`
}
