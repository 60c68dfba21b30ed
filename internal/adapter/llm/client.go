package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoChoices is returned when the response carries no choices.
var ErrNoChoices = errors.New("no choices in completion response")

// OpenRouter attribution headers.
const (
	appReferer = "https://github.com/pandu992003/weather-project-copy2"
	appTitle   = "weather-assistant"
)

// Client talks to an OpenAI-compatible /chat/completions endpoint.
// OpenRouter is the default deployment.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a completion client. baseURL is the API root,
// e.g. https://openrouter.ai/api/v1.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateChatCompletion posts one completion request and returns the reply.
// A reply without a message is reported as ErrNoChoices.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	var result ChatCompletionResponse
	if err := c.send(ctx, http.MethodPost, "/chat/completions", body, &result); err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil {
		return nil, ErrNoChoices
	}
	return &result, nil
}

// ListModels returns the models the endpoint offers.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var result ModelsResponse
	if err := c.send(ctx, http.MethodGet, "/models", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("HTTP-Referer", appReferer)
	httpReq.Header.Set("X-Title", appTitle)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeStatusError(resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeStatusError(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return &StatusError{StatusCode: status, Message: errResp.Error.Message, Type: errResp.Error.Type}
	}
	return &StatusError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}
