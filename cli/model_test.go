package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/protocol"
)

type recordingSender struct {
	sent []string
	err  error
}

func (s *recordingSender) SendInput(content string) error {
	s.sent = append(s.sent, content)
	return s.err
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestModelSendsInputAndRendersResult(t *testing.T) {
	client := &recordingSender{}
	m := newModel(client, nil, "sess_1", nil)

	m = typeText(t, m, "weather in London")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if !m.busy || m.input.Value() != "" {
		t.Fatalf("enter should clear the input and mark the model busy")
	}
	if cmd == nil {
		t.Fatalf("enter should produce a send command")
	}
	m = update(t, m, m.sendCmd("weather in London")())
	if len(client.sent) != 1 || client.sent[0] != "weather in London" {
		t.Fatalf("unexpected sends: %v", client.sent)
	}

	m = update(t, m, &protocol.TurnResultMessage{Messages: []domain.Message{
		domain.UserMessage("weather in London"),
		domain.AssistantMessage("", []domain.ToolCall{{ID: "c1", Name: "get_current_weather"}}),
		domain.ToolMessage("c1", "Current weather in London: clear sky"),
		domain.AssistantMessage("It is clear in London.", nil),
	}})
	if m.busy {
		t.Fatalf("turn_result should clear the busy flag")
	}

	out := m.transcript()
	for _, want := range []string{"[Calling tools: get_current_weather...]", "Tool Output", "It is clear in London."} {
		if !strings.Contains(out, want) {
			t.Fatalf("transcript missing %q:\n%s", want, out)
		}
	}
}

func TestModelShowsFailures(t *testing.T) {
	m := newModel(&recordingSender{}, nil, "sess_1", []domain.Message{domain.UserMessage("earlier question")})

	m = update(t, m, &protocol.TurnResultMessage{
		Messages: []domain.Message{domain.UserMessage("weather in Paris")},
		Error:    &protocol.TurnError{Code: "connection_error", Message: "tool host connection failed"},
	})
	out := m.transcript()
	if !strings.Contains(out, "earlier question") || !strings.Contains(out, "weather in Paris") {
		t.Fatalf("partial history should stay visible:\n%s", out)
	}
	if !strings.Contains(out, "Error (connection_error): tool host connection failed") {
		t.Fatalf("failure should be visible:\n%s", out)
	}

	m = update(t, m, connClosedMsg{err: errors.New("EOF")})
	if !m.closed || !strings.Contains(m.transcript(), "Error (disconnected): EOF") {
		t.Fatalf("disconnect should be shown")
	}
}

func TestModelIgnoresInputWhileBusy(t *testing.T) {
	m := newModel(&recordingSender{}, nil, "sess_1", nil)
	m = update(t, m, &protocol.TurnStartedMessage{})

	m = typeText(t, m, "hello")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.input.Value() != "hello" {
		t.Fatalf("input should be kept while a turn runs, got %q", m.input.Value())
	}

	m = update(t, m, &protocol.ErrorMessage{Code: protocol.ErrorCodeTurnInFlight, Message: "busy"})
	if !m.busy {
		t.Fatalf("turn_in_flight must not clear the busy flag")
	}
}

func TestDecodeServerMessage(t *testing.T) {
	msg, err := decodeServerMessage([]byte(`{"type":"turn_result","turn_id":"turn_1","messages":[{"role":"assistant","content":"hi"}]}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	result, ok := msg.(*protocol.TurnResultMessage)
	if !ok || result.TurnID != "turn_1" || len(result.Messages) != 1 {
		t.Fatalf("unexpected message: %#v", msg)
	}

	if _, err := decodeServerMessage([]byte(`{"type":"bogus"}`)); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
