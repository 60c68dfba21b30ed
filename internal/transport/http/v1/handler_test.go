package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandu992003/weather-project-copy2/internal/adapter/llm"
	"github.com/pandu992003/weather-project-copy2/internal/adapter/mcpclient"
	"github.com/pandu992003/weather-project-copy2/internal/config"
	"github.com/pandu992003/weather-project-copy2/internal/conversation"
	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/service"
	"github.com/pandu992003/weather-project-copy2/internal/toolhost"
	"github.com/pandu992003/weather-project-copy2/internal/tools"
	"github.com/pandu992003/weather-project-copy2/internal/weather"
	"github.com/pandu992003/weather-project-copy2/tests/helpers"
)

const londonWeather = `{"weather":[{"description":"clear sky"}],"main":{"temp":15.2,"humidity":60}}`

// newTestHandler wires the handler to the mock model and an in-process
// weather Tool Host backed by a fake OpenWeather server.
func newTestHandler(t *testing.T) (*Handler, *conversation.Registry) {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(londonWeather))
	}))
	t.Cleanup(upstream.Close)

	reg := tools.NewRegistry()
	require.NoError(t, weather.Register(reg, weather.NewClient(upstream.URL, "test-key", 5*time.Second)))
	host := toolhost.NewServer(reg, "weather-test", "test")

	return newHandlerWithClient(t, mcpclient.NewInMemoryClient(host.MCP()))
}

func newHandlerWithClient(t *testing.T, client *mcpclient.Client) (*Handler, *conversation.Registry) {
	t.Helper()
	cfg := &config.Config{LLMModel: "mock-model"}
	svc := service.New(helpers.NewTestSQLiteStore(t), llm.NewMockClient(), client, cfg, nil)
	sessions := conversation.NewRegistry()
	return NewHandler(svc, sessions), sessions
}

func postTurn(t *testing.T, h *Handler, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/turns", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/sessions/:session_id/turns")
	c.SetParamNames("session_id")
	c.SetParamValues(sessionID)
	require.NoError(t, h.CreateTurn(c))
	return rec
}

func get(t *testing.T, handle echo.HandlerFunc, target, param, value string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if param != "" {
		c.SetParamNames(param)
		c.SetParamValues(value)
	}
	require.NoError(t, handle(c))
	return rec
}

func TestCreateTurn(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postTurn(t, h, "s1", `{"content":"What is the weather in London?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CreateTurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Error)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, 2, resp.ModelCalls)
	assert.Equal(t, 1, resp.ToolCalls)
	require.Len(t, resp.Messages, 4)
	assert.Equal(t, domain.RoleTool, resp.Messages[2].Role)
	assert.Equal(t, "Current weather in London: clear sky, Temperature: 15.2°C, Humidity: 60%", resp.Messages[2].Content)
	assert.Contains(t, resp.Messages[3].Content, "Current weather in London")

	t.Run("messages", func(t *testing.T) {
		rec := get(t, h.GetSessionMessages, "/v1/sessions/s1/messages", "session_id", "s1")
		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Messages []domain.Message `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Messages, 4)
	})

	t.Run("turn", func(t *testing.T) {
		rec := get(t, h.GetTurn, "/v1/turns/"+resp.TurnID, "turn_id", resp.TurnID)
		assert.Equal(t, http.StatusOK, rec.Code)
		var turn domain.Turn
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
		assert.Equal(t, domain.TurnStatusDone, turn.Status)
		assert.Equal(t, 2, turn.ModelCalls)
	})

	t.Run("tool calls", func(t *testing.T) {
		rec := get(t, h.GetTurnToolCalls, "/v1/turns/"+resp.TurnID+"/tool_calls", "turn_id", resp.TurnID)
		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			ToolCalls []domain.ToolCallRecord `json:"tool_calls"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.ToolCalls, 1)
		assert.Equal(t, weather.CurrentWeatherTool, body.ToolCalls[0].ToolName)
		assert.Equal(t, domain.ToolCallStatusSucceeded, body.ToolCalls[0].Status)
	})

	t.Run("events by type", func(t *testing.T) {
		rec := get(t, h.GetTurnEvents, "/v1/turns/"+resp.TurnID+"/events?type=tool_result", "turn_id", resp.TurnID)
		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Events []domain.Event `json:"events"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Events, 1)
		assert.Equal(t, domain.EventTypeToolResult, body.Events[0].Type)
	})

	t.Run("session turns", func(t *testing.T) {
		rec := get(t, h.ListSessionTurns, "/v1/sessions/s1/turns", "session_id", "s1")
		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Turns []domain.Turn `json:"turns"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Turns, 1)
	})
}

func TestCreateTurnRejections(t *testing.T) {
	h, sessions := newTestHandler(t)

	t.Run("Empty Input", func(t *testing.T) {
		rec := postTurn(t, h, "s1", `{"content":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "empty_input")
	})

	t.Run("Bad Body", func(t *testing.T) {
		rec := postTurn(t, h, "s1", `{"content":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Turn In Flight", func(t *testing.T) {
		release, err := sessions.GetOrCreate("busy").BeginTurn()
		require.NoError(t, err)
		defer release()

		rec := postTurn(t, h, "busy", `{"content":"hello"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "turn_in_flight")
	})
}

func TestCreateTurnToolHostUnreachable(t *testing.T) {
	h, _ := newHandlerWithClient(t, mcpclient.NewClient("http://127.0.0.1:1/mcp/sse"))

	rec := postTurn(t, h, "s1", `{"content":"weather in Paris"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp CreateTurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "connection_error", resp.Error.Code)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, domain.RoleUser, resp.Messages[0].Role)
}

func TestGetTurnNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := get(t, h.GetTurn, "/v1/turns/turn_missing", "turn_id", "turn_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h.GetTurnEvents, "/v1/turns/turn_missing/events", "turn_id", "turn_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSessionMessagesUnknownSession(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := get(t, h.GetSessionMessages, "/v1/sessions/nope/messages", "session_id", "nope")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"messages":[]`)
}

func TestListToolsAndModels(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := get(t, h.ListTools, "/v1/tools", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Tools     []domain.ToolDescriptor `json:"tools"`
		Functions []domain.FunctionSpec   `json:"functions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Tools, 2)
	require.Len(t, listing.Functions, 2)
	assert.Equal(t, weather.ForecastTool, listing.Functions[1].Name)

	rec = get(t, h.ListModels, "/v1/models", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mock-gpt-4o-mini")

	rec = get(t, h.Health, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
