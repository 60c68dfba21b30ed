// Package main runs the weather agent: the turn orchestrator behind an
// HTTP + WebSocket chat API.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pandu992003/weather-project-copy2/internal/adapter/llm"
	"github.com/pandu992003/weather-project-copy2/internal/adapter/mcpclient"
	"github.com/pandu992003/weather-project-copy2/internal/config"
	"github.com/pandu992003/weather-project-copy2/internal/conversation"
	"github.com/pandu992003/weather-project-copy2/internal/hub"
	"github.com/pandu992003/weather-project-copy2/internal/repository"
	"github.com/pandu992003/weather-project-copy2/internal/service"
	handler "github.com/pandu992003/weather-project-copy2/internal/transport/http"
	"github.com/pandu992003/weather-project-copy2/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if strings.EqualFold(cfg.LogLevel, "debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting weather agent...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Tool Host: %s", cfg.ToolHostURL)
	log.Printf("Completion endpoint: %s (model %s)", cfg.LLMBaseURL, cfg.LLMModel)
	log.Printf("Database: %s", cfg.DatabaseURL)

	// Initialize turn ledger
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize collaborators
	llmClient := llm.NewLLMClient(cfg)
	toolHost := mcpclient.NewClient(cfg.ToolHostURL)

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy, cfg.DeniedTools)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}
	if len(cfg.DeniedTools) > 0 {
		log.Printf("Denied tools: %s", strings.Join(cfg.DeniedTools, ", "))
	}

	// Initialize service
	svc := service.New(db, llmClient, toolHost, cfg, policyEngine)

	// Create server
	sessions := conversation.NewRegistry()
	server := handler.NewServer(cfg, svc, sessions, hub.NewHub())

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Agent API started on port %d (WebSocket at /ws)", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down agent...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Agent stopped")
}
