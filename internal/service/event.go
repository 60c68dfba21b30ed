package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// recordEvent records an event to the store.
func (s *Service) recordEvent(ctx context.Context, turnID string, eventType domain.EventType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.Event{
		EventID: "evt_" + uuid.New().String()[:8],
		TurnID:  turnID,
		Ts:      time.Now().UnixMilli(),
		Type:    eventType,
		Payload: payloadBytes,
	}

	return s.store.CreateEvent(ctx, event)
}

// traceEvent records an event and only logs when that fails. The ledger
// never decides the outcome of a turn.
func (s *Service) traceEvent(ctx context.Context, turnID string, eventType domain.EventType, payload interface{}) {
	if err := s.recordEvent(ctx, turnID, eventType, payload); err != nil {
		log.Printf("WARN: failed to record %s event for turn %s: %v", eventType, turnID, err)
	}
}
