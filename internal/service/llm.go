package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pandu992003/weather-project-copy2/internal/adapter/llm"
	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// complete sends the history to the completion endpoint and returns the
// assistant message. Tools are offered with tool_choice auto when specs is
// non-empty and not offered at all otherwise.
func (s *Service) complete(ctx context.Context, turnID string, history []domain.Message, specs []domain.FunctionSpec) (domain.Message, error) {
	requestID := "llm_" + uuid.New().String()[:8]
	startTime := time.Now()

	req := &llm.ChatCompletionRequest{
		Model:    s.config.LLMModel,
		Messages: llm.ToChatMessages(history),
	}
	if len(specs) > 0 {
		req.Tools = llm.ToTools(specs)
		req.ToolChoice = llm.ToolChoiceAuto
	}

	s.traceEvent(ctx, turnID, domain.EventTypeLLMCallStarted, domain.LLMCallStartedPayload{
		RequestID: requestID,
		Model:     req.Model,
		Tools:     len(req.Tools),
		Messages:  len(req.Messages),
	})

	resp, err := s.llmClient.CreateChatCompletion(ctx, req)
	latencyMs := time.Since(startTime).Milliseconds()
	if err == nil && (resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message == nil) {
		err = llm.ErrNoChoices
	}
	if err != nil {
		s.traceEvent(ctx, turnID, domain.EventTypeLLMCallDone, domain.LLMCallDonePayload{
			RequestID: requestID,
			Model:     req.Model,
			LatencyMs: latencyMs,
			Error:     err.Error(),
		})
		return domain.Message{}, fmt.Errorf("%w: %w", domain.ErrEndpoint, err)
	}

	msg := llm.FromChatMessage(resp.Choices[0].Message)

	payload := domain.LLMCallDonePayload{
		RequestID: requestID,
		Model:     resp.Model,
		LatencyMs: latencyMs,
		ToolCalls: len(msg.ToolCalls),
	}
	if resp.Usage != nil {
		payload.PromptTokens = resp.Usage.PromptTokens
		payload.CompletionTokens = resp.Usage.CompletionTokens
		payload.TotalTokens = resp.Usage.TotalTokens
	}
	s.traceEvent(ctx, turnID, domain.EventTypeLLMCallDone, payload)

	return msg, nil
}

// ListModels retrieves the list of available models.
func (s *Service) ListModels(ctx context.Context) ([]llm.Model, error) {
	return s.llmClient.ListModels(ctx)
}
