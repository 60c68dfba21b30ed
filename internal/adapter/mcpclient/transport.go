package mcpclient

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	stdioPrefix = "stdio://"
	ssePrefix   = "sse://"
)

// BuildTransport turns an endpoint string into an MCP client transport.
//
//	http(s)://host/mcp/sse       SSE (default for plain URLs)
//	http+sse://host/mcp/sse      SSE
//	http+stream://host/mcp       streamable HTTP
//	sse://host/mcp/sse           SSE over https
//	stdio://command args...      subprocess over stdio
func BuildTransport(ctx context.Context, endpoint string) (mcpsdk.Transport, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("tool host endpoint is empty")
	}

	lowered := strings.ToLower(endpoint)
	switch {
	case strings.HasPrefix(lowered, stdioPrefix):
		return commandTransport(ctx, endpoint[len(stdioPrefix):])
	case strings.HasPrefix(lowered, ssePrefix):
		target, err := normalizeURL(endpoint[len(ssePrefix):], true)
		if err != nil {
			return nil, fmt.Errorf("invalid SSE endpoint: %w", err)
		}
		return &mcpsdk.SSEClientTransport{Endpoint: target}, nil
	}

	streamable, target, matched, err := parseHintedURL(endpoint)
	if err != nil {
		return nil, err
	}
	if matched {
		if streamable {
			return &mcpsdk.StreamableClientTransport{Endpoint: target}, nil
		}
		return &mcpsdk.SSEClientTransport{Endpoint: target}, nil
	}

	target, err = normalizeURL(endpoint, false)
	if err != nil {
		return nil, fmt.Errorf("invalid tool host endpoint %q: %w", endpoint, err)
	}
	return &mcpsdk.SSEClientTransport{Endpoint: target}, nil
}

func commandTransport(ctx context.Context, command string) (mcpsdk.Transport, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("stdio command is empty")
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	return &mcpsdk.CommandTransport{Command: cmd}, nil
}

// parseHintedURL recognises http+sse:// and http+stream:// style schemes.
func parseHintedURL(endpoint string) (streamable bool, target string, matched bool, err error) {
	u, parseErr := url.Parse(endpoint)
	if parseErr != nil || u.Scheme == "" {
		return false, "", false, nil
	}
	base, hint, ok := strings.Cut(strings.ToLower(u.Scheme), "+")
	if !ok || (base != "http" && base != "https") {
		return false, "", false, nil
	}
	switch hint {
	case "sse":
	case "stream", "streamable", "http":
		streamable = true
	default:
		return false, "", true, fmt.Errorf("unsupported transport hint %q", hint)
	}
	u.Scheme = base
	target, err = normalizeURL(u.String(), false)
	if err != nil {
		return false, "", true, fmt.Errorf("invalid tool host endpoint %q: %w", endpoint, err)
	}
	return streamable, target, true, nil
}

func normalizeURL(raw string, guessScheme bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	if guessScheme && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	u.Scheme = scheme
	return u.String(), nil
}
