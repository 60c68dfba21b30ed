// Package v1 provides the agent's HTTP API handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pandu992003/weather-project-copy2/internal/conversation"
	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service  *service.Service
	sessions *conversation.Registry
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, sessions *conversation.Registry) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Chat sessions
	e.POST("/v1/sessions/:session_id/turns", h.CreateTurn)
	e.GET("/v1/sessions/:session_id/turns", h.ListSessionTurns)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)

	// Turn ledger
	e.GET("/v1/turns/:turn_id", h.GetTurn)
	e.GET("/v1/turns/:turn_id/events", h.GetTurnEvents)
	e.GET("/v1/turns/:turn_id/tool_calls", h.GetTurnToolCalls)

	// Collaborators
	e.GET("/v1/tools", h.ListTools)
	e.GET("/v1/models", h.ListModels)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"version":  "0.1.0",
		"sessions": h.sessions.Len(),
	})
}

// ErrorBody is the JSON error shape of the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]ErrorBody{
		"error": {Code: domain.ErrorCode(err), Message: err.Error()},
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTurnNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTurnInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConnection), errors.Is(err, domain.ErrProtocol), errors.Is(err, domain.ErrEndpoint):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
