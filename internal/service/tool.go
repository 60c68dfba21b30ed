package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pandu992003/weather-project-copy2/internal/adapter/mcpclient"
	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/toolschema"
	"github.com/pandu992003/weather-project-copy2/policy"
)

// runToolCall executes one model-issued tool call and returns the text of
// its tool message. Failures never escape: they become error text so the
// model can react to them on the synthesis call.
func (s *Service) runToolCall(ctx context.Context, t *turn, session *mcpclient.Session, seq int, call domain.ToolCall) string {
	record := &domain.ToolCallRecord{
		ToolCallID: call.ID,
		TurnID:     t.id,
		Seq:        seq,
		ToolName:   call.Name,
		Status:     domain.ToolCallStatusRunning,
		Args:       call.RawArguments(),
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateToolCall(ctx, record); err != nil {
		log.Printf("WARN: failed to create tool call %s: %v", call.ID, err)
	}
	s.traceEvent(ctx, t.id, domain.EventTypeToolCallStarted, domain.ToolCallStartedPayload{
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Args:       record.Args,
	})

	content, err := s.invokeTool(ctx, t, session, call)
	status := domain.ToolCallStatusSucceeded
	errText := ""
	switch {
	case errors.Is(err, domain.ErrToolBlocked):
		status = domain.ToolCallStatusBlocked
	case err != nil:
		status = domain.ToolCallStatusFailed
	}
	if err != nil {
		errText = err.Error()
		log.Printf("WARN: turn %s: tool call %s (%s) failed: %v", t.id, call.ID, call.Name, err)
		content = toolErrorContent(call.Name, err)
	}

	if _, uerr := s.store.UpdateToolCallResult(ctx, t.id, call.ID, status, content, errText); uerr != nil {
		log.Printf("WARN: failed to update tool call %s: %v", call.ID, uerr)
	}
	s.traceEvent(ctx, t.id, domain.EventTypeToolResult, domain.ToolResultPayload{
		ToolCallID: call.ID,
		Status:     status,
		Content:    content,
		Error:      errText,
	})
	return content
}

func (s *Service) invokeTool(ctx context.Context, t *turn, session *mcpclient.Session, call domain.ToolCall) (string, error) {
	args, err := toolschema.ParseInvocation(call.Arguments)
	if err != nil {
		return "", err
	}

	if s.policyEngine != nil {
		decision, reason, err := s.policyEngine.Evaluate(ctx, policy.Input{
			ToolName:  call.Name,
			Args:      args,
			SessionID: t.conv.ID(),
			TurnID:    t.id,
		})
		if err != nil {
			return "", fmt.Errorf("%w: policy evaluation failed: %w", domain.ErrToolBlocked, err)
		}
		s.traceEvent(ctx, t.id, domain.EventTypePolicyDecision, domain.PolicyDecisionPayload{
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Decision:   decision,
			Reason:     reason,
		})
		if decision == policy.DecisionBlock {
			return "", fmt.Errorf("%w: %s", domain.ErrToolBlocked, reason)
		}
	}

	result, err := session.CallTool(ctx, call.Name, args)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
