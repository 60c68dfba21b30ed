package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func createTurn(t *testing.T, store *SQLiteStore, turnID string) {
	t.Helper()
	turn := &domain.Turn{
		TurnID:    turnID,
		SessionID: "s1",
		Status:    domain.TurnStatusRunning,
		State:     domain.TurnStateStart,
		StartedAt: time.Now(),
	}
	if err := store.CreateTurn(context.Background(), turn); err != nil {
		t.Fatalf("CreateTurn failed: %v", err)
	}
}

func TestSQLiteStoreTurnLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTurn(t, store, "turn_1")

	if err := store.UpdateTurnState(ctx, "turn_1", domain.TurnStateAwaitingTools, 1); err != nil {
		t.Fatalf("UpdateTurnState failed: %v", err)
	}

	errPayload := json.RawMessage(`{"code":"endpoint_error"}`)
	if err := store.UpdateTurnCompleted(ctx, "turn_1", domain.TurnStatusFailed, domain.TurnStateAwaitingFinal, errPayload); err != nil {
		t.Fatalf("UpdateTurnCompleted failed: %v", err)
	}

	got, err := store.GetTurn(ctx, "turn_1")
	if err != nil {
		t.Fatalf("GetTurn failed: %v", err)
	}
	if got == nil || got.Status != domain.TurnStatusFailed || got.State != domain.TurnStateAwaitingFinal {
		t.Fatalf("unexpected turn: %+v", got)
	}
	if got.ModelCalls != 1 || got.EndedAt == nil {
		t.Fatalf("model calls and end time should be recorded: %+v", got)
	}
	if string(got.Error) != string(errPayload) {
		t.Fatalf("unexpected error payload: %s", got.Error)
	}

	missing, err := store.GetTurn(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil turn for unknown id, got %+v, %v", missing, err)
	}

	turns, err := store.ListTurns(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(turns) != 1 || turns[0].TurnID != "turn_1" {
		t.Fatalf("unexpected turns: %+v", turns)
	}
}

func TestSQLiteStoreToolCalls(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTurn(t, store, "turn_1")
	createTurn(t, store, "turn_2")

	for i, name := range []string{"get_current_weather", "get_forecast"} {
		tc := &domain.ToolCallRecord{
			ToolCallID: "call_" + name,
			TurnID:     "turn_1",
			Seq:        i,
			ToolName:   name,
			Status:     domain.ToolCallStatusRunning,
			Args:       json.RawMessage(`{"city":"Paris"}`),
			CreatedAt:  time.Now(),
		}
		if err := store.CreateToolCall(ctx, tc); err != nil {
			t.Fatalf("CreateToolCall failed: %v", err)
		}
	}
	// The same call id may appear again in another turn.
	if err := store.CreateToolCall(ctx, &domain.ToolCallRecord{
		ToolCallID: "call_get_forecast",
		TurnID:     "turn_2",
		ToolName:   "get_forecast",
		Status:     domain.ToolCallStatusRunning,
		CreatedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("CreateToolCall in second turn failed: %v", err)
	}

	updated, err := store.UpdateToolCallResult(ctx, "turn_1", "call_get_forecast", domain.ToolCallStatusFailed, "", "boom")
	if err != nil || !updated {
		t.Fatalf("UpdateToolCallResult failed: %v (updated=%v)", err, updated)
	}
	updated, err = store.UpdateToolCallResult(ctx, "turn_1", "call_get_forecast", domain.ToolCallStatusSucceeded, "late", "")
	if err != nil {
		t.Fatalf("UpdateToolCallResult failed: %v", err)
	}
	if updated {
		t.Fatalf("completed tool call must not be updated twice")
	}

	calls, err := store.ListToolCalls(ctx, "turn_1")
	if err != nil {
		t.Fatalf("ListToolCalls failed: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].ToolName != "get_current_weather" || calls[1].ToolName != "get_forecast" {
		t.Fatalf("calls should be ordered by seq: %+v", calls)
	}
	if calls[1].Status != domain.ToolCallStatusFailed || calls[1].Error != "boom" || calls[1].CompletedAt == nil {
		t.Fatalf("unexpected completed call: %+v", calls[1])
	}
	if string(calls[0].Args) != `{"city":"Paris"}` {
		t.Fatalf("unexpected args: %s", calls[0].Args)
	}
}

func TestSQLiteStoreEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	createTurn(t, store, "turn_1")

	ts := time.Now().UnixMilli()
	types := []domain.EventType{domain.EventTypeTurnStarted, domain.EventTypeUserInput, domain.EventTypeTurnDone}
	for i, typ := range types {
		event := &domain.Event{
			EventID: "e" + string(rune('1'+i)),
			TurnID:  "turn_1",
			Ts:      ts,
			Type:    typ,
			Payload: json.RawMessage(`{"session_id":"s1"}`),
		}
		if err := store.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	events, err := store.GetEvents(ctx, "turn_1", 0, nil, 0)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, typ := range types {
		if events[i].Type != typ {
			t.Fatalf("event %d type %s, want %s", i, events[i].Type, typ)
		}
	}

	filtered, err := store.GetEvents(ctx, "turn_1", 0, []string{string(domain.EventTypeUserInput)}, 10)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].EventID != "e2" {
		t.Fatalf("unexpected filtered events: %+v", filtered)
	}
}
