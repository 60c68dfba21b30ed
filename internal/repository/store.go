package repository

import (
	"context"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// Store defines the interface for the turn ledger.
type Store interface {
	// Turn operations
	CreateTurn(ctx context.Context, turn *domain.Turn) error
	GetTurn(ctx context.Context, turnID string) (*domain.Turn, error)
	ListTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error)
	UpdateTurnState(ctx context.Context, turnID string, state domain.TurnState, modelCalls int) error
	UpdateTurnCompleted(ctx context.Context, turnID string, status domain.TurnStatus, state domain.TurnState, errData []byte) error

	// ToolCall operations
	CreateToolCall(ctx context.Context, tc *domain.ToolCallRecord) error
	UpdateToolCallResult(ctx context.Context, turnID, toolCallID string, status domain.ToolCallStatus, result, errText string) (bool, error)
	ListToolCalls(ctx context.Context, turnID string) ([]domain.ToolCallRecord, error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, turnID string, afterTs int64, types []string, limit int) ([]domain.Event, error)

	// Lifecycle
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
