package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// MockToolName is the tool the mock model reaches for when tools are offered.
const MockToolName = "get_current_weather"

// MockClient is an offline LLMClient. When tools are offered it asks for
// the current weather of the last word of the user's message; on the
// synthesis call it summarises the tool output it was given.
type MockClient struct {
	seq atomic.Int64
}

// NewMockClient creates a new mock LLM client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// CreateChatCompletion returns a mock response.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg := m.generateMockMessage(req)
	finish := "stop"
	if len(msg.ToolCalls) > 0 {
		finish = "tool_calls"
	}

	return &ChatCompletionResponse{
		ID:    fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Model: req.Model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      msg,
				FinishReason: finish,
			},
		},
		Usage: &Usage{
			PromptTokens:     m.estimateTokens(req),
			CompletionTokens: len(msg.Text()) / 4,
			TotalTokens:      m.estimateTokens(req) + len(msg.Text())/4,
		},
	}, nil
}

// ListModels returns a list of mock models.
func (m *MockClient) ListModels(ctx context.Context) ([]Model, error) {
	return []Model{
		{ID: "mock-gpt-4o-mini", Name: "Mock GPT-4o mini", ContextLength: 128000, OwnedBy: "mock"},
	}, nil
}

// generateMockMessage generates a mock assistant message based on the request.
func (m *MockClient) generateMockMessage(req *ChatCompletionRequest) *ChatMessage {
	lastUser := -1
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUser = i
			break
		}
	}
	if lastUser < 0 {
		return textMessage("[MOCK] This is a mock response from the LLM client.")
	}
	userText := req.Messages[lastUser].Text()

	var toolOutputs []string
	for _, msg := range req.Messages[lastUser+1:] {
		if msg.Role == "tool" {
			toolOutputs = append(toolOutputs, strings.TrimSpace(msg.Text()))
		}
	}
	if len(toolOutputs) > 0 {
		return textMessage("[MOCK] Here is what I found:\n" + strings.Join(toolOutputs, "\n"))
	}

	if lastUser == len(req.Messages)-1 && offersTool(req.Tools, MockToolName) {
		if city := lastWord(userText); city != "" {
			args, _ := json.Marshal(map[string]string{"city": city})
			return &ChatMessage{
				Role: "assistant",
				ToolCalls: []ToolCall{
					{
						ID:   fmt.Sprintf("call_mock_%d", m.seq.Add(1)),
						Type: "function",
						Function: ToolCallFunction{
							Name:      MockToolName,
							Arguments: string(args),
						},
					},
				},
			}
		}
	}

	return textMessage(fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(userText, 100)))
}

// estimateTokens provides a rough token count estimate.
func (m *MockClient) estimateTokens(req *ChatCompletionRequest) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Text()) / 4
	}
	return total
}

func textMessage(content string) *ChatMessage {
	return &ChatMessage{Role: "assistant", Content: &content}
}

func offersTool(tools []Tool, name string) bool {
	for _, t := range tools {
		if t.Function.Name == name {
			return true
		}
	}
	return false
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], "?!.,;:'\"")
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
