// Package llm is the client side of the completion endpoint: request and
// reply types in the OpenAI chat shape, an HTTP client, an offline mock and
// conversions to and from conversation messages.
package llm

import "context"

// LLMClient is what the turn orchestrator needs from a completion endpoint.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	ListModels(ctx context.Context) ([]Model, error)
}

var _ LLMClient = (*Client)(nil)
