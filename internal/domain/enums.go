// Package domain defines the core domain models for the weather agent.
package domain

// Role is the speaker of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// TurnState is a position in the turn state machine.
type TurnState string

const (
	TurnStateStart         TurnState = "START"
	TurnStateAwaitingModel TurnState = "AWAITING_MODEL"
	TurnStateAwaitingTools TurnState = "AWAITING_TOOLS"
	TurnStateAwaitingFinal TurnState = "AWAITING_MODEL_FINAL"
	TurnStateDone          TurnState = "DONE"
)

// TurnStatus is the ledger status of a turn.
type TurnStatus string

const (
	TurnStatusRunning TurnStatus = "RUNNING"
	TurnStatusDone    TurnStatus = "DONE"
	TurnStatusFailed  TurnStatus = "FAILED"
)

// EventType represents the type of a turn event.
type EventType string

const (
	EventTypeTurnStarted EventType = "turn_started"
	EventTypeUserInput   EventType = "user_input"
	EventTypeToolsListed EventType = "tools_listed"
	EventTypeTurnDone    EventType = "turn_done"
	EventTypeTurnFailed  EventType = "turn_failed"

	// Completion endpoint events
	EventTypeLLMCallStarted EventType = "llm_call_started"
	EventTypeLLMCallDone    EventType = "llm_call_done"

	// Tool events
	EventTypePolicyDecision  EventType = "policy_decision"
	EventTypeToolCallStarted EventType = "tool_call_started"
	EventTypeToolResult      EventType = "tool_result"
)

// ToolCallStatus represents the outcome of one tool invocation.
type ToolCallStatus string

const (
	ToolCallStatusRunning   ToolCallStatus = "RUNNING"
	ToolCallStatusSucceeded ToolCallStatus = "SUCCEEDED"
	ToolCallStatusFailed    ToolCallStatus = "FAILED"
	ToolCallStatusBlocked   ToolCallStatus = "BLOCKED"
)
