package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// CreateTurnRequest is the body of POST /v1/sessions/:session_id/turns.
type CreateTurnRequest struct {
	Content string `json:"content"`
}

// CreateTurnResponse reports a settled turn. Messages are the ones the turn
// appended; on failure they are the partial history and Error is set.
type CreateTurnResponse struct {
	TurnID     string           `json:"turn_id"`
	SessionID  string           `json:"session_id"`
	Messages   []domain.Message `json:"messages"`
	ModelCalls int              `json:"model_calls"`
	ToolCalls  int              `json:"tool_calls"`
	Error      *ErrorBody       `json:"error,omitempty"`
}

// CreateTurn runs one turn to completion.
// POST /v1/sessions/:session_id/turns
func (h *Handler) CreateTurn(c echo.Context) error {
	var req CreateTurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]ErrorBody{
			"error": {Code: "invalid_request", Message: "invalid request body"},
		})
	}

	conv := h.sessions.GetOrCreate(c.Param("session_id"))
	result, err := h.service.RunTurn(c.Request().Context(), conv, req.Content)
	if result == nil {
		return errorJSON(c, statusFor(err), err)
	}

	resp := CreateTurnResponse{
		TurnID:     result.TurnID,
		SessionID:  result.SessionID,
		Messages:   result.Messages,
		ModelCalls: result.ModelCalls,
		ToolCalls:  result.ToolCalls,
	}
	if err != nil {
		resp.Error = &ErrorBody{Code: domain.ErrorCode(err), Message: err.Error()}
		return c.JSON(statusFor(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetSessionMessages returns the conversation history of a session.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")
	conv, ok := h.sessions.Get(sessionID)
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"session_id": sessionID,
			"messages":   []domain.Message{},
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   conv.Snapshot(),
	})
}

// ListSessionTurns lists the recorded turns of a session.
// GET /v1/sessions/:session_id/turns
func (h *Handler) ListSessionTurns(c echo.Context) error {
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	turns, err := h.service.ListSessionTurns(c.Request().Context(), c.Param("session_id"), limit)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"turns": turns,
	})
}

// GetTurn returns a turn record.
// GET /v1/turns/:turn_id
func (h *Handler) GetTurn(c echo.Context) error {
	turn, err := h.service.GetTurn(c.Request().Context(), c.Param("turn_id"))
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, turn)
}

// GetTurnEvents retrieves trace events for a turn.
// GET /v1/turns/:turn_id/events
func (h *Handler) GetTurnEvents(c echo.Context) error {
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterTs := int64(0)
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			afterTs = val
		}
	}
	types := c.QueryParams()["type"]

	events, err := h.service.GetTurnEvents(c.Request().Context(), c.Param("turn_id"), afterTs, types, limit)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

// GetTurnToolCalls lists the tool invocations of a turn.
// GET /v1/turns/:turn_id/tool_calls
func (h *Handler) GetTurnToolCalls(c echo.Context) error {
	calls, err := h.service.GetTurnToolCalls(c.Request().Context(), c.Param("turn_id"))
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tool_calls": calls,
	})
}
