// Package http assembles the agent's HTTP server.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pandu992003/weather-project-copy2/internal/config"
	"github.com/pandu992003/weather-project-copy2/internal/conversation"
	"github.com/pandu992003/weather-project-copy2/internal/hub"
	"github.com/pandu992003/weather-project-copy2/internal/service"
	v1 "github.com/pandu992003/weather-project-copy2/internal/transport/http/v1"
	"github.com/pandu992003/weather-project-copy2/internal/transport/ws"
)

// NewServer creates the agent server: the v1 JSON API plus the WebSocket
// chat channel at /ws. Both share the session registry.
func NewServer(cfg *config.Config, svc *service.Service, sessions *conversation.Registry, h *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, sessions)
	wsServer := ws.NewServer(cfg, h, svc, sessions)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	e.GET("/ws", wsServer.HandleWebSocket)

	return e
}
