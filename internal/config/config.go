// Package config provides configuration for the agent and the tool host.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvGogoMode is the environment variable name for mode selection.
	EnvGogoMode = "GOGO_MODE"
	// ModeMock indicates the mock completion client should be used.
	ModeMock = "MOCK"
)

// ErrMissingAPIKey is returned when no completion API key is configured.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY not found in environment")

// Config holds the agent configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Tool host session endpoint (SSE, streamable HTTP or stdio command)
	ToolHostURL string

	// Completion endpoint
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration
	Mode       string

	// Turn ledger
	DatabaseURL string

	// Tool policy
	DeniedTools []string

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// ToolHostConfig holds the tool host configuration.
type ToolHostConfig struct {
	Port int

	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	OpenWeatherTimeout time.Duration

	LogLevel string
}

// Load loads the agent configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8501),
		ToolHostURL:    getEnv("TOOL_HOST_URL", getEnv("SERVER_URL", "http://localhost:8000/mcp/sse")),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
		LLMAPIKey:      getEnv("OPENROUTER_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "openai/gpt-4o-mini"),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		Mode:           getEnv(EnvGogoMode, ""),
		DatabaseURL:    getEnv("DATABASE_URL", "file:agent.db?mode=memory&cache=shared"),
		DeniedTools:    getEnvList("DENIED_TOOLS"),
		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 300000)) * time.Millisecond,
		MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks settings the agent cannot start without.
func (c *Config) Validate() error {
	if c.MockMode() {
		return nil
	}
	if c.LLMAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// MockMode reports whether the mock completion client is selected.
func (c *Config) MockMode() bool {
	return strings.EqualFold(c.Mode, ModeMock)
}

// LoadToolHost loads the tool host configuration from environment variables.
func LoadToolHost() *ToolHostConfig {
	return &ToolHostConfig{
		Port:               getEnvInt("TOOLHOST_PORT", 8000),
		OpenWeatherAPIKey:  getEnv("OPENWEATHER_API_KEY", ""),
		OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", "http://api.openweathermap.org/data/2.5"),
		OpenWeatherTimeout: time.Duration(getEnvInt("OPENWEATHER_TIMEOUT_MS", 10000)) * time.Millisecond,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
