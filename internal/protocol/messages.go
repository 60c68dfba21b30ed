// Package protocol defines the WebSocket chat protocol between front-ends
// and the agent.
package protocol

import "github.com/pandu992003/weather-project-copy2/internal/domain"

// Message types from client to agent
const (
	TypeHello     = "hello"
	TypeUserInput = "user_input"
)

// Message types from agent to client
const (
	TypeHelloAck    = "hello_ack"
	TypeTurnStarted = "turn_started"
	TypeTurnResult  = "turn_result"
	TypeError       = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	TurnID    string `json:"turn_id,omitempty"`
}

// HelloMessage binds the connection to a chat session. An empty session id
// starts a new one.
type HelloMessage struct {
	BaseMessage
	ClientMeta map[string]string `json:"client_meta,omitempty"`
}

// HelloAckMessage confirms the session and carries its history so far.
type HelloAckMessage struct {
	BaseMessage
	Messages []domain.Message `json:"messages"`
}

// UserInputMessage starts a turn.
type UserInputMessage struct {
	BaseMessage
	Content string `json:"content"`
}

// TurnStartedMessage is sent once a turn has claimed the conversation.
type TurnStartedMessage struct {
	BaseMessage
}

// TurnResultMessage carries the messages a turn appended. Error is set when
// the turn failed; the messages are then the partial history.
type TurnResultMessage struct {
	BaseMessage
	Messages []domain.Message `json:"messages"`
	Error    *TurnError       `json:"error,omitempty"`
}

// TurnError describes a failed turn.
type TurnError struct {
	Code    string `json:"code"`
	State   string `json:"state,omitempty"`
	Message string `json:"message"`
}

// ErrorMessage is sent when a request cannot be served.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeEmptyInput      = "empty_input"
	ErrorCodeTurnInFlight    = "turn_in_flight"
	ErrorCodeInternalError   = "internal_error"
)
