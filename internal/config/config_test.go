package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "TOOL_HOST_URL", "SERVER_URL", "LLM_MODEL", "LLM_TIMEOUT_MS", "DENIED_TOOLS", "GOGO_MODE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPPort != 8501 {
		t.Fatalf("unexpected port: %d", cfg.HTTPPort)
	}
	if cfg.ToolHostURL != "http://localhost:8000/mcp/sse" {
		t.Fatalf("unexpected tool host url: %s", cfg.ToolHostURL)
	}
	if cfg.LLMModel != "openai/gpt-4o-mini" {
		t.Fatalf("unexpected model: %s", cfg.LLMModel)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.LLMTimeout)
	}
	if len(cfg.DeniedTools) != 0 {
		t.Fatalf("expected no denied tools, got %v", cfg.DeniedTools)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SERVER_URL", "http://mcp-server:8000/mcp/sse")
	t.Setenv("TOOL_HOST_URL", "")
	t.Setenv("DENIED_TOOLS", " get_forecast , ,get_current_weather")
	t.Setenv("LLM_TIMEOUT_MS", "not-a-number")

	cfg := Load()
	if cfg.HTTPPort != 9000 {
		t.Fatalf("unexpected port: %d", cfg.HTTPPort)
	}
	if cfg.ToolHostURL != "http://mcp-server:8000/mcp/sse" {
		t.Fatalf("SERVER_URL should be honoured, got %s", cfg.ToolHostURL)
	}
	if len(cfg.DeniedTools) != 2 || cfg.DeniedTools[0] != "get_forecast" || cfg.DeniedTools[1] != "get_current_weather" {
		t.Fatalf("unexpected denied tools: %v", cfg.DeniedTools)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("invalid int should fall back to default, got %s", cfg.LLMTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	cfg.Mode = "mock"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock mode should not need a key: %v", err)
	}

	cfg = &Config{LLMAPIKey: "sk-test"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadToolHost(t *testing.T) {
	t.Setenv("TOOLHOST_PORT", "")
	t.Setenv("OPENWEATHER_BASE_URL", "")
	t.Setenv("OPENWEATHER_API_KEY", "abc")

	cfg := LoadToolHost()
	if cfg.Port != 8000 {
		t.Fatalf("unexpected port: %d", cfg.Port)
	}
	if cfg.OpenWeatherBaseURL != "http://api.openweathermap.org/data/2.5" {
		t.Fatalf("unexpected base url: %s", cfg.OpenWeatherBaseURL)
	}
	if cfg.OpenWeatherAPIKey != "abc" {
		t.Fatalf("unexpected api key: %s", cfg.OpenWeatherAPIKey)
	}
}
