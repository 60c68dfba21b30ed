// Package ws serves the WebSocket chat channel used by front-ends.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/pandu992003/weather-project-copy2/internal/config"
	"github.com/pandu992003/weather-project-copy2/internal/conversation"
	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/hub"
	"github.com/pandu992003/weather-project-copy2/internal/protocol"
	"github.com/pandu992003/weather-project-copy2/internal/service"
)

// TurnRunner runs one turn against a conversation.
type TurnRunner interface {
	RunTurnWithHooks(ctx context.Context, conv *conversation.Store, input string, hooks service.TurnHooks) (*domain.TurnResult, error)
}

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	turns    TurnRunner
	sessions *conversation.Registry
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, turns TurnRunner, sessions *conversation.Registry) *Server {
	return &Server{
		cfg:      cfg,
		hub:      h,
		turns:    turns,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
// GET /ws
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("WARN: failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	if s.cfg.MaxMessageSize > 0 {
		ws.SetReadLimit(s.cfg.MaxMessageSize)
	}

	go s.writePump(conn)
	go s.readPump(conn)
	return nil
}

func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.Conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARN: WebSocket error: %v", err)
			}
			return
		}
		s.handleMessage(conn, message)
	}
}

func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{}, deadline)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message, deadline); err != nil {
				log.Printf("WARN: failed to write message: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var base protocol.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case protocol.TypeHello:
		s.handleHello(conn, data)
	case protocol.TypeUserInput:
		s.handleUserInput(conn, data)
	default:
		s.sendError(conn, base.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

func (s *Server) handleHello(conn *hub.Connection, data []byte) {
	var msg protocol.HelloMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid hello message")
		return
	}

	conv := s.sessions.GetOrCreate(msg.SessionID)
	s.hub.BindSession(conn, conv.ID())

	ack := protocol.HelloAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeHelloAck,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
			SessionID: conv.ID(),
		},
		Messages: conv.Snapshot(),
	}
	if err := s.hub.SendJSON(conn, ack); err != nil {
		log.Printf("WARN: failed to send hello_ack: %v", err)
	}
	log.Printf("Hello handshake completed for session: %s", conv.ID())
}

func (s *Server) handleUserInput(conn *hub.Connection, data []byte) {
	var msg protocol.UserInputMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid user_input message")
		return
	}

	sessionID := conn.SessionID()
	if sessionID == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionRequired, "must send hello first")
		return
	}
	if strings.TrimSpace(msg.Content) == "" {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeEmptyInput, domain.ErrEmptyInput.Error())
		return
	}

	conv := s.sessions.GetOrCreate(sessionID)
	if conv.Busy() {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeTurnInFlight, domain.ErrTurnInFlight.Error())
		return
	}

	go s.runTurn(conn, conv, msg)
}

func (s *Server) runTurn(conn *hub.Connection, conv *conversation.Store, msg protocol.UserInputMessage) {
	sessionID := conv.ID()
	result, err := s.turns.RunTurnWithHooks(context.Background(), conv, msg.Content, service.TurnHooks{
		OnStarted: func(turnID string) {
			s.broadcast(sessionID, protocol.TurnStartedMessage{
				BaseMessage: protocol.BaseMessage{
					Type:      protocol.TypeTurnStarted,
					Ts:        time.Now().UnixMilli(),
					RequestID: msg.RequestID,
					SessionID: sessionID,
					TurnID:    turnID,
				},
			})
		},
	})
	if result == nil {
		code := protocol.ErrorCodeInternalError
		switch {
		case errors.Is(err, domain.ErrTurnInFlight):
			code = protocol.ErrorCodeTurnInFlight
		case errors.Is(err, domain.ErrEmptyInput):
			code = protocol.ErrorCodeEmptyInput
		}
		message := "turn produced no result"
		if err != nil {
			message = err.Error()
		}
		s.sendError(conn, msg.RequestID, code, message)
		return
	}

	out := protocol.TurnResultMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeTurnResult,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
			SessionID: sessionID,
			TurnID:    result.TurnID,
		},
		Messages: result.Messages,
	}
	if err != nil {
		out.Error = &protocol.TurnError{
			Code:    domain.ErrorCode(err),
			Message: err.Error(),
		}
		var turnErr *domain.TurnError
		if errors.As(err, &turnErr) {
			out.Error.State = string(turnErr.State)
		}
	}
	s.broadcast(sessionID, out)
}

func (s *Server) broadcast(sessionID string, v interface{}) {
	if _, err := s.hub.BroadcastJSON(sessionID, v); err != nil {
		log.Printf("ERROR: failed to broadcast to session %s: %v", sessionID, err)
	}
}

func (s *Server) sendError(conn *hub.Connection, requestID, code, message string) {
	errMsg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: conn.SessionID(),
		},
		Code:    code,
		Message: message,
	}
	if err := s.hub.SendJSON(conn, errMsg); err != nil {
		log.Printf("WARN: failed to send error to %s: %v", conn.ID, err)
	}
}
