// Package mcpclient is the Session Client: it connects to a Tool Host over
// MCP, lists its tools and invokes them.
package mcpclient

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

const (
	clientName    = "weather-agent"
	clientVersion = "1.0.0"
)

type transportFunc func(ctx context.Context) (mcpsdk.Transport, error)

// Client opens sessions against one Tool Host endpoint. It holds no
// connection itself; every Connect dials a fresh session.
type Client struct {
	endpoint  string
	impl      *mcpsdk.Client
	transport transportFunc
}

// NewClient creates a client for the given endpoint (see BuildTransport
// for the accepted forms).
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		impl:     mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil),
		transport: func(ctx context.Context) (mcpsdk.Transport, error) {
			return BuildTransport(ctx, endpoint)
		},
	}
}

// NewTransportClient creates a client that dials every session through
// dial. endpoint is only used for logging and ledger events.
func NewTransportClient(endpoint string, dial func(ctx context.Context) (mcpsdk.Transport, error)) *Client {
	return &Client{
		endpoint:  endpoint,
		impl:      mcpsdk.NewClient(&mcpsdk.Implementation{Name: clientName, Version: clientVersion}, nil),
		transport: dial,
	}
}

// NewInMemoryClient creates a client whose sessions are served by an
// in-process MCP server.
func NewInMemoryClient(server *mcpsdk.Server) *Client {
	return NewTransportClient("inmemory", func(ctx context.Context) (mcpsdk.Transport, error) {
		serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
		if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
			return nil, err
		}
		return clientTransport, nil
	})
}

// Endpoint returns the endpoint the client dials.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Connect establishes the transport and performs the initialize handshake.
// Callers own the returned session and must Close it; WithSession does
// that for them.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	transport, err := c.transport(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	cs, err := c.impl.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConnection, c.endpoint, err)
	}
	return newSession(cs), nil
}

// WithSession connects, runs fn and closes the session on every exit path,
// including a panic inside fn.
func (c *Client) WithSession(ctx context.Context, fn func(*Session) error) error {
	session, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logCloseError(c.endpoint, cerr)
		}
	}()
	return fn(session)
}
