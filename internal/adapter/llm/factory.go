package llm

import (
	"log"

	"github.com/pandu992003/weather-project-copy2/internal/config"
)

// NewLLMClient creates a completion client based on the configured mode.
// If GOGO_MODE=MOCK, returns a MockClient; otherwise returns a real Client.
func NewLLMClient(cfg *config.Config) LLMClient {
	if cfg.MockMode() {
		log.Println("INFO: GOGO_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}

	return NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
}
