package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pandu992003/weather-project-copy2/internal/adapter/mcpclient"
	"github.com/pandu992003/weather-project-copy2/internal/conversation"
	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/toolschema"
)

// TurnHooks lets callers observe a turn. OnStarted runs once the
// conversation has been claimed, before any message is appended.
type TurnHooks struct {
	OnStarted func(turnID string)
}

// turn carries the mutable state of one running turn.
type turn struct {
	id         string
	conv       *conversation.Store
	state      domain.TurnState
	modelCalls int
	toolCalls  int
}

// RunTurn drives one turn: it appends the user input, asks the model,
// runs the requested tools in order and asks the model once more to
// synthesise a reply. At most two completion calls are made.
//
// The returned result is never nil once the conversation was claimed; on a
// turn-level failure it holds the messages appended before the failure and
// the error is a *domain.TurnError.
func (s *Service) RunTurn(ctx context.Context, conv *conversation.Store, input string) (*domain.TurnResult, error) {
	return s.RunTurnWithHooks(ctx, conv, input, TurnHooks{})
}

// RunTurnWithHooks is RunTurn with observation hooks.
func (s *Service) RunTurnWithHooks(ctx context.Context, conv *conversation.Store, input string, hooks TurnHooks) (*domain.TurnResult, error) {
	if strings.TrimSpace(input) == "" {
		return nil, domain.ErrEmptyInput
	}
	release, err := conv.BeginTurn()
	if err != nil {
		return nil, err
	}
	defer release()

	// A started turn runs to completion or failure.
	ctx = context.WithoutCancel(ctx)

	t := &turn{
		id:    "turn_" + uuid.New().String()[:8],
		conv:  conv,
		state: domain.TurnStateStart,
	}
	start := conv.Len()

	if err := s.store.CreateTurn(ctx, &domain.Turn{
		TurnID:    t.id,
		SessionID: conv.ID(),
		Status:    domain.TurnStatusRunning,
		State:     t.state,
		StartedAt: time.Now(),
	}); err != nil {
		log.Printf("WARN: failed to create turn %s: %v", t.id, err)
	}
	s.traceEvent(ctx, t.id, domain.EventTypeTurnStarted, domain.TurnStartedPayload{
		SessionID: conv.ID(),
		Endpoint:  s.toolHost.Endpoint(),
	})
	if hooks.OnStarted != nil {
		hooks.OnStarted(t.id)
	}

	runErr := s.runTurn(ctx, t, input)

	result := &domain.TurnResult{
		TurnID:     t.id,
		SessionID:  conv.ID(),
		Messages:   conv.Since(start),
		ModelCalls: t.modelCalls,
		ToolCalls:  t.toolCalls,
	}

	if runErr != nil {
		turnErr := &domain.TurnError{TurnID: t.id, State: t.state, Err: runErr}
		s.failTurn(ctx, t, turnErr)
		return result, turnErr
	}

	t.state = domain.TurnStateDone
	if err := s.store.UpdateTurnCompleted(ctx, t.id, domain.TurnStatusDone, t.state, nil); err != nil {
		log.Printf("WARN: failed to complete turn %s: %v", t.id, err)
	}
	final := ""
	if n := len(result.Messages); n > 0 {
		final = result.Messages[n-1].Content
	}
	s.traceEvent(ctx, t.id, domain.EventTypeTurnDone, domain.TurnDonePayload{
		ModelCalls:   t.modelCalls,
		ToolCalls:    t.toolCalls,
		FinalMessage: final,
	})
	return result, nil
}

func (s *Service) runTurn(ctx context.Context, t *turn, input string) error {
	userMsg, err := t.conv.Append(domain.UserMessage(input))
	if err != nil {
		return err
	}
	s.traceEvent(ctx, t.id, domain.EventTypeUserInput, domain.UserInputPayload{
		MessageID: userMsg.MessageID,
		Content:   userMsg.Content,
	})

	return s.toolHost.WithSession(ctx, func(session *mcpclient.Session) error {
		descriptors, err := session.ListTools(ctx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(descriptors))
		for _, d := range descriptors {
			names = append(names, d.Name)
		}
		s.traceEvent(ctx, t.id, domain.EventTypeToolsListed, domain.ToolsListedPayload{Tools: names})
		specs := toolschema.ToCallingSchema(descriptors)

		s.enter(ctx, t, domain.TurnStateAwaitingModel)
		reply, err := s.complete(ctx, t.id, t.conv.Snapshot(), specs)
		if err != nil {
			return err
		}
		t.modelCalls++
		reply.ToolCalls = uniqueCallIDs(t.id, reply.ToolCalls)
		if _, err := t.conv.Append(reply); err != nil {
			return err
		}
		if !reply.HasToolCalls() {
			return nil
		}

		s.enter(ctx, t, domain.TurnStateAwaitingTools)
		for i, call := range reply.ToolCalls {
			content := s.runToolCall(ctx, t, session, i, call)
			t.toolCalls++
			if _, err := t.conv.Append(domain.ToolMessage(call.ID, content)); err != nil {
				return err
			}
		}

		s.enter(ctx, t, domain.TurnStateAwaitingFinal)
		final, err := s.complete(ctx, t.id, t.conv.Snapshot(), nil)
		if err != nil {
			return err
		}
		t.modelCalls++
		// Tool calls on the synthesis reply would stay unanswered.
		if final.HasToolCalls() {
			log.Printf("WARN: turn %s: dropping %d tool calls from synthesis reply", t.id, len(final.ToolCalls))
			final.ToolCalls = nil
		}
		_, err = t.conv.Append(final)
		return err
	})
}

func (s *Service) enter(ctx context.Context, t *turn, state domain.TurnState) {
	t.state = state
	if err := s.store.UpdateTurnState(ctx, t.id, state, t.modelCalls); err != nil {
		log.Printf("WARN: failed to update turn %s state: %v", t.id, err)
	}
}

func (s *Service) failTurn(ctx context.Context, t *turn, turnErr *domain.TurnError) {
	log.Printf("ERROR: turn %s failed in %s: %v", t.id, t.state, turnErr.Err)

	payload := domain.TurnFailedPayload{
		State:   t.state,
		Code:    domain.ErrorCode(turnErr.Err),
		Message: turnErr.Err.Error(),
	}
	errData, _ := json.Marshal(payload)
	if err := s.store.UpdateTurnCompleted(ctx, t.id, domain.TurnStatusFailed, t.state, errData); err != nil {
		log.Printf("WARN: failed to complete turn %s: %v", t.id, err)
	}
	s.traceEvent(ctx, t.id, domain.EventTypeTurnFailed, payload)
}

// uniqueCallIDs replaces empty or repeated tool call ids so every call can
// be answered by exactly one tool message.
func uniqueCallIDs(turnID string, calls []domain.ToolCall) []domain.ToolCall {
	seen := make(map[string]bool, len(calls))
	for i := range calls {
		id := calls[i].ID
		if id == "" || seen[id] {
			fresh := "call_" + uuid.New().String()[:8]
			for seen[fresh] {
				fresh = "call_" + uuid.New().String()[:8]
			}
			log.Printf("WARN: turn %s: replacing tool call id %q of %s with %s", turnID, id, calls[i].Name, fresh)
			calls[i].ID = fresh
		}
		seen[calls[i].ID] = true
	}
	return calls
}

// IsTurnError reports whether err ended a turn after it started.
func IsTurnError(err error) bool {
	var turnErr *domain.TurnError
	return errors.As(err, &turnErr)
}

// toolErrorContent is the tool message text for a failed tool call.
func toolErrorContent(name string, err error) string {
	return fmt.Sprintf("Error: tool %q failed: %v", name, err)
}
