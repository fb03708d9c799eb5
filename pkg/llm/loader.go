package llm

import (
	"fmt"
	"log/slog"
	"time"

	"bookwyrm/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultGroups returns the provider configuration used when config.json
// carries no "llm" section: the Groq-hosted Llama model the assistant was
// built around, keyed from the environment.
func DefaultGroups(cfg *config.Config) []ProviderGroupConfig {
	return []ProviderGroupConfig{{
		Type:    "groq",
		APIKeys: []string{cfg.GroqAPIKey},
		Models:  []string{"llama-3.1-8b-instant"},
	}}
}

// NewFromConfig builds the reasoning engine client from configuration.
// Multiple groups or models are wrapped in a FallbackClient so transient
// provider failures degrade to the next candidate instead of the user.
func NewFromConfig(cfg *config.Config, system *config.SystemConfig) (LLMClient, error) {
	var groups []ProviderGroupConfig

	if len(cfg.LLM) > 0 {
		if err := json.Unmarshal(cfg.LLM, &groups); err != nil {
			return nil, fmt.Errorf("failed to parse 'llm' config: %w", err)
		}
	} else {
		groups = DefaultGroups(cfg)
	}

	var allClients []LLMClient
	for _, group := range groups {
		slog.Info("Loading LLM group", "type", group.Type, "models", len(group.Models))

		factory, ok := GetProviderFactory(group.Type)
		if !ok {
			slog.Warn("Unknown provider type", "type", group.Type)
			continue
		}

		clients, err := factory.Create(group, system)
		if err != nil {
			slog.Warn("Failed to create clients", "type", group.Type, "error", err)
			continue
		}

		allClients = append(allClients, clients...)
	}

	if len(allClients) == 0 {
		return nil, fmt.Errorf("no LLM clients could be initialized")
	}

	slog.Info("LLM clients initialized", "count", len(allClients))

	// Always wrap, even for a single client: the wrapper is the only
	// retry layer, provider SDKs run with retries disabled.
	return &FallbackClient{
		Clients:    allClients,
		MaxRetries: system.MaxRetries,
		RetryDelay: time.Duration(system.RetryDelayMs) * time.Millisecond,
	}, nil
}
