package domain

import (
	"errors"
	"fmt"
)

// Turn-scoped failures. These end the turn and reach the caller.
var (
	// ErrConnection is returned when the Tool Host cannot be reached.
	ErrConnection = errors.New("tool host connection failed")

	// ErrProtocol is returned when the handshake or tool listing is malformed.
	ErrProtocol = errors.New("tool host protocol error")

	// ErrEndpoint is returned when a completion endpoint call fails.
	ErrEndpoint = errors.New("completion endpoint failed")
)

// Call-scoped failures. The orchestrator turns these into tool messages.
var (
	ErrToolNotFound       = errors.New("tool not found")
	ErrInvalidArguments   = errors.New("invalid tool arguments")
	ErrMalformedArguments = errors.New("malformed tool arguments")
	ErrToolExecution      = errors.New("tool execution failed")
	ErrTransport          = errors.New("tool transport failed")
	ErrToolBlocked        = errors.New("tool blocked by policy")
)

var (
	// ErrTurnInFlight is returned when a turn is requested on a conversation
	// that is already running one.
	ErrTurnInFlight = errors.New("a turn is already in progress for this conversation")

	// ErrEmptyInput is returned for blank user input.
	ErrEmptyInput = errors.New("user input is empty")

	// ErrTurnNotFound is returned when a turn id is not in the ledger.
	ErrTurnNotFound = errors.New("turn not found")
)

// TurnError reports a fatal failure of one turn and the state it failed in.
// Messages appended before the failure stay in the conversation.
type TurnError struct {
	TurnID string
	State  TurnState
	Err    error
}

func (e *TurnError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("turn %s failed in %s: %v", e.TurnID, e.State, e.Err)
}

func (e *TurnError) Unwrap() error {
	return e.Err
}

// ErrorCode maps an error onto a short machine-readable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConnection):
		return "connection_error"
	case errors.Is(err, ErrProtocol):
		return "protocol_error"
	case errors.Is(err, ErrEndpoint):
		return "endpoint_error"
	case errors.Is(err, ErrTurnInFlight):
		return "turn_in_flight"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrTurnNotFound):
		return "not_found"
	case errors.Is(err, ErrToolNotFound):
		return "tool_not_found"
	case errors.Is(err, ErrInvalidArguments):
		return "invalid_arguments"
	case errors.Is(err, ErrMalformedArguments):
		return "malformed_arguments"
	case errors.Is(err, ErrToolExecution):
		return "tool_execution_error"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrToolBlocked):
		return "blocked"
	}
	return "internal_error"
}
