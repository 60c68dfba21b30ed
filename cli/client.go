package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pandu992003/weather-project-copy2/internal/protocol"
)

// Client is the chat front-end's WebSocket connection to the agent.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	seq       int
}

// Dial connects to the agent's WebSocket endpoint.
func Dial(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Hello binds the connection to a session and waits for hello_ack.
// An empty sessionID starts a new session.
func (c *Client) Hello(sessionID string) (*protocol.HelloAckMessage, error) {
	msg := protocol.HelloMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHello,
			Ts:        time.Now().UnixMilli(),
			SessionID: sessionID,
		},
		ClientMeta: map[string]string{"client": "weather-cli"},
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello_ack: %w", err)
	}
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	if base.Type == protocol.TypeError {
		var errMsg protocol.ErrorMessage
		json.Unmarshal(data, &errMsg)
		return nil, fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}
	if base.Type != protocol.TypeHelloAck {
		return nil, fmt.Errorf("expected hello_ack, got: %s", base.Type)
	}

	var ack protocol.HelloAckMessage
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	c.sessionID = ack.SessionID
	return &ack, nil
}

// SendInput starts a turn with the given user text.
func (c *Client) SendInput(content string) error {
	c.seq++
	return c.conn.WriteJSON(protocol.UserInputMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeUserInput,
			Ts:        time.Now().UnixMilli(),
			SessionID: c.sessionID,
			RequestID: fmt.Sprintf("req_%d", c.seq),
		},
		Content: content,
	})
}

// Listen forwards every frame read from the server to out until the
// connection fails; the final error is sent as a connClosedMsg.
func (c *Client) Listen(out chan<- any) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			out <- connClosedMsg{err: err}
			return
		}
		msg, err := decodeServerMessage(data)
		if err != nil {
			continue
		}
		out <- msg
	}
}

// decodeServerMessage decodes a frame into its typed protocol message.
func decodeServerMessage(data []byte) (any, error) {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, err
	}

	var target any
	switch base.Type {
	case protocol.TypeTurnStarted:
		target = &protocol.TurnStartedMessage{}
	case protocol.TypeTurnResult:
		target = &protocol.TurnResultMessage{}
	case protocol.TypeError:
		target = &protocol.ErrorMessage{}
	case protocol.TypeHelloAck:
		target = &protocol.HelloAckMessage{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", base.Type)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}
	return target, nil
}
