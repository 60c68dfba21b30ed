// Package main runs the weather Tool Host: an MCP server exposing
// get_current_weather and get_forecast.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pandu992003/weather-project-copy2/internal/config"
	"github.com/pandu992003/weather-project-copy2/internal/toolhost"
	"github.com/pandu992003/weather-project-copy2/internal/tools"
	"github.com/pandu992003/weather-project-copy2/internal/weather"
)

func main() {
	stdio := flag.Bool("stdio", false, "Serve MCP over stdin/stdout instead of HTTP")
	flag.Parse()

	// Load configuration
	cfg := config.LoadToolHost()
	if strings.EqualFold(cfg.LogLevel, "debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if cfg.OpenWeatherAPIKey == "" {
		log.Printf("WARN: OPENWEATHER_API_KEY is not set; weather tools will report an error")
	}

	// Register tools
	registry := tools.NewRegistry()
	client := weather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout)
	if err := weather.Register(registry, client); err != nil {
		log.Fatalf("Failed to register weather tools: %v", err)
	}
	server := toolhost.NewServer(registry, "weather-assistant", "1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *stdio {
		log.Printf("Serving weather tools over stdio")
		if err := server.ServeStdio(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("stdio server failed: %v", err)
		}
		return
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	server.RegisterRoutes(e)

	log.Printf("Starting weather Tool Host...")
	log.Printf("HTTP Port: %d", cfg.Port)
	log.Printf("OpenWeather: %s", cfg.OpenWeatherBaseURL)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("MCP endpoints: SSE at %s, streamable HTTP at %s", toolhost.SSEPath, toolhost.StreamablePath)

	<-ctx.Done()
	log.Println("Shutting down Tool Host...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
		os.Exit(1)
	}

	log.Println("Tool Host stopped")
}
