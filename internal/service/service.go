// Package service implements the turn orchestrator and the read-side
// queries over the turn ledger.
package service

import (
	"github.com/pandu992003/weather-project-copy2/internal/adapter/llm"
	"github.com/pandu992003/weather-project-copy2/internal/adapter/mcpclient"
	"github.com/pandu992003/weather-project-copy2/internal/config"
	"github.com/pandu992003/weather-project-copy2/internal/repository"
	"github.com/pandu992003/weather-project-copy2/policy"
)

type Service struct {
	store        repository.Store
	llmClient    llm.LLMClient
	toolHost     *mcpclient.Client
	config       *config.Config
	policyEngine *policy.Engine
}

// New wires the service. policyEngine may be nil, in which case every
// tool call is allowed.
func New(store repository.Store, llmClient llm.LLMClient, toolHost *mcpclient.Client, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		llmClient:    llmClient,
		toolHost:     toolHost,
		config:       cfg,
		policyEngine: policyEngine,
	}
}
