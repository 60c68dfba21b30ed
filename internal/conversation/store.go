// Package conversation holds chat histories in memory.
package conversation

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// ErrInvalidMessage is returned by Append for messages that would break
// the history's shape.
var ErrInvalidMessage = errors.New("invalid message")

// Store is an append-only conversation history. Only the turn running
// against it appends; everyone else reads snapshots.
type Store struct {
	id string

	mu       sync.RWMutex
	messages []domain.Message
	answered map[string]bool

	busy atomic.Bool
	now  func() time.Time
}

// NewStore creates an empty history.
func NewStore(id string) *Store {
	return &Store{
		id:       id,
		messages: make([]domain.Message, 0, 16),
		answered: make(map[string]bool),
		now:      time.Now,
	}
}

// ID returns the conversation id.
func (s *Store) ID() string {
	return s.id
}

// Append adds a message to the end of the history and returns it with its
// id and timestamp filled in. A tool message must answer a not yet answered
// call of the assistant message it follows.
func (s *Store) Append(msg domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(msg); err != nil {
		return domain.Message{}, err
	}

	if msg.MessageID == "" {
		msg.MessageID = "msg_" + uuid.New().String()[:8]
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}
	msg = msg.Clone()

	if msg.HasToolCalls() {
		s.answered = make(map[string]bool, len(msg.ToolCalls))
	}
	if msg.Role == domain.RoleTool {
		s.answered[msg.ToolCallID] = true
	}
	s.messages = append(s.messages, msg)
	return msg.Clone(), nil
}

func (s *Store) check(msg domain.Message) error {
	switch msg.Role {
	case domain.RoleUser, domain.RoleAssistant:
		if msg.ToolCallID != "" {
			return fmt.Errorf("%w: %s message with tool_call_id", ErrInvalidMessage, msg.Role)
		}
		if msg.Role == domain.RoleUser && len(msg.ToolCalls) > 0 {
			return fmt.Errorf("%w: user message with tool calls", ErrInvalidMessage)
		}
		ids := make(map[string]bool, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			if tc.ID == "" {
				return fmt.Errorf("%w: tool call %s without id", ErrInvalidMessage, tc.Name)
			}
			if ids[tc.ID] {
				return fmt.Errorf("%w: duplicate tool call id %s", ErrInvalidMessage, tc.ID)
			}
			ids[tc.ID] = true
		}
		return nil
	case domain.RoleTool:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, msg.Role)
	}

	if msg.ToolCallID == "" {
		return fmt.Errorf("%w: tool message without tool_call_id", ErrInvalidMessage)
	}
	var caller *domain.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role != domain.RoleTool {
			caller = &s.messages[i]
			break
		}
	}
	if caller == nil || !caller.HasToolCalls() {
		return fmt.Errorf("%w: tool message %s does not follow a tool-calling assistant message", ErrInvalidMessage, msg.ToolCallID)
	}
	for _, tc := range caller.ToolCalls {
		if tc.ID == msg.ToolCallID {
			if s.answered[tc.ID] {
				return fmt.Errorf("%w: tool call %s already answered", ErrInvalidMessage, tc.ID)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: tool message answers unknown call %s", ErrInvalidMessage, msg.ToolCallID)
}

// Snapshot returns a copy of the history in order.
func (s *Store) Snapshot() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out
}

// Since returns a copy of the messages appended after the first n.
func (s *Store) Since(n int) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(s.messages) {
		return []domain.Message{}
	}
	out := make([]domain.Message, 0, len(s.messages)-n)
	for _, m := range s.messages[n:] {
		out = append(out, m.Clone())
	}
	return out
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// BeginTurn marks the conversation busy. It fails with
// domain.ErrTurnInFlight while another turn holds it. The returned release
// func must be called when the turn ends.
func (s *Store) BeginTurn() (func(), error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrTurnInFlight
	}
	var once sync.Once
	return func() {
		once.Do(func() { s.busy.Store(false) })
	}, nil
}

// Busy reports whether a turn is running.
func (s *Store) Busy() bool {
	return s.busy.Load()
}
