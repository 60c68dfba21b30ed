package service

import (
	"context"
	"fmt"

	"github.com/pandu992003/weather-project-copy2/internal/adapter/mcpclient"
	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// GetTurn returns the ledger record of a turn.
func (s *Service) GetTurn(ctx context.Context, turnID string) (*domain.Turn, error) {
	turn, err := s.store.GetTurn(ctx, turnID)
	if err != nil {
		return nil, fmt.Errorf("failed to get turn: %w", err)
	}
	if turn == nil {
		return nil, domain.ErrTurnNotFound
	}
	return turn, nil
}

// ListSessionTurns lists the recorded turns of a chat session.
func (s *Service) ListSessionTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	turns, err := s.store.ListTurns(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	return turns, nil
}

func (s *Service) GetTurnEvents(ctx context.Context, turnID string, afterTs int64, types []string, limit int) ([]domain.Event, error) {
	if _, err := s.GetTurn(ctx, turnID); err != nil {
		return nil, err
	}
	events, err := s.store.GetEvents(ctx, turnID, afterTs, types, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get turn events: %w", err)
	}
	return events, nil
}

func (s *Service) GetTurnToolCalls(ctx context.Context, turnID string) ([]domain.ToolCallRecord, error) {
	if _, err := s.GetTurn(ctx, turnID); err != nil {
		return nil, err
	}
	calls, err := s.store.ListToolCalls(ctx, turnID)
	if err != nil {
		return nil, fmt.Errorf("failed to get turn tool calls: %w", err)
	}
	return calls, nil
}

// ListTools opens a short-lived session and returns the Tool Host's
// current descriptors.
func (s *Service) ListTools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	var descriptors []domain.ToolDescriptor
	err := s.toolHost.WithSession(ctx, func(session *mcpclient.Session) error {
		var err error
		descriptors, err = session.ListTools(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return descriptors, nil
}
