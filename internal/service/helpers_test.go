package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pandu992003/weather-project-copy2/internal/adapter/llm"
	"github.com/pandu992003/weather-project-copy2/internal/adapter/mcpclient"
	"github.com/pandu992003/weather-project-copy2/internal/config"
	"github.com/pandu992003/weather-project-copy2/internal/repository"
	"github.com/pandu992003/weather-project-copy2/policy"
	"github.com/pandu992003/weather-project-copy2/tests/helpers"
)

// scriptedLLM replays canned replies and records every request.
type scriptedLLM struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []*llm.ChatCompletionRequest
}

type scriptedReply struct {
	msg *llm.ChatMessage
	err error
}

func (s *scriptedLLM) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &llm.ChatCompletionResponse{
		ID:      "chatcmpl-test",
		Model:   req.Model,
		Choices: []llm.Choice{{Message: next.msg, FinishReason: "stop"}},
		Usage:   &llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (s *scriptedLLM) ListModels(ctx context.Context) ([]llm.Model, error) {
	return []llm.Model{{ID: "test-model"}}, nil
}

func (s *scriptedLLM) Requests() []*llm.ChatCompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*llm.ChatCompletionRequest(nil), s.requests...)
}

func text(content string) scriptedReply {
	return scriptedReply{msg: &llm.ChatMessage{Role: "assistant", Content: &content}}
}

func calls(tcs ...llm.ToolCall) scriptedReply {
	return scriptedReply{msg: &llm.ChatMessage{Role: "assistant", ToolCalls: tcs}}
}

func call(id, name, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Type: "function", Function: llm.ToolCallFunction{Name: name, Arguments: args}}
}

// toolHost is an in-process Tool Host that records invocations.
type toolHost struct {
	mu      sync.Mutex
	invoked []string
}

func (h *toolHost) record(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invoked = append(h.invoked, name)
}

func (h *toolHost) Invoked() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.invoked...)
}

func (h *toolHost) server() *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "test-weather", Version: "test"}, nil)
	citySchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string"},
			"days": map[string]any{"type": "integer"},
		},
		"required": []any{"city"},
	}

	server.AddTool(&mcpsdk.Tool{Name: "get_current_weather", Description: "Current weather", InputSchema: citySchema},
		func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			h.record("get_current_weather")
			var args struct {
				City string `json:"city"`
			}
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, err
			}
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "Current weather in " + args.City + ": clear sky"}}}, nil
		})

	server.AddTool(&mcpsdk.Tool{Name: "get_forecast", Description: "Forecast", InputSchema: citySchema},
		func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			h.record("get_forecast")
			var args struct {
				City string `json:"city"`
			}
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, err
			}
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{
				&mcpsdk.TextContent{Text: "Forecast for " + args.City + ":"},
				&mcpsdk.TextContent{Text: "2024-01-01: rain, 4°C"},
			}}, nil
		})

	server.AddTool(&mcpsdk.Tool{Name: "explode", Description: "Always fails", InputSchema: map[string]any{"type": "object", "properties": map[string]any{}}},
		func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			h.record("explode")
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "upstream exploded"}}, IsError: true}, nil
		})

	return server
}

type fixture struct {
	svc   *Service
	llm   *scriptedLLM
	host  *toolHost
	store repository.Store
}

func newFixture(t *testing.T, replies ...scriptedReply) *fixture {
	t.Helper()
	host := &toolHost{}
	return newFixtureWithClient(t, mcpclient.NewInMemoryClient(host.server()), host, nil, replies...)
}

func newFixtureWithClient(t *testing.T, client *mcpclient.Client, host *toolHost, engine *policy.Engine, replies ...scriptedReply) *fixture {
	t.Helper()
	db := helpers.NewTestSQLiteStore(t)
	fake := &scriptedLLM{replies: replies}
	cfg := &config.Config{LLMModel: "test-model", LLMTimeout: time.Second}
	return &fixture{
		svc:   New(db, fake, client, cfg, engine),
		llm:   fake,
		host:  host,
		store: db,
	}
}
