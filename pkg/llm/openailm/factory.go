package openailm

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Factory handles creation of OpenAI-compatible clients. Registered twice:
// as "groq" (default base URL set) and as "openai" (stock endpoint).
type Factory struct {
	provider       string
	defaultBaseURL string
}

// Create implements llm.ProviderFactory.
func (f *Factory) Create(cfg llm.ProviderGroupConfig, sys *config.SystemConfig) ([]llm.LLMClient, error) {
	apiKey := ""
	if len(cfg.APIKeys) > 0 {
		apiKey = cfg.APIKeys[0]
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s: missing API key", f.provider)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = f.defaultBaseURL
	}

	// Engine-level defaults, overridable per provider group.
	options := map[string]any{
		"temperature": sys.Temperature,
		"max_tokens":  float64(sys.MaxTokens),
	}
	maps.Copy(options, cfg.Options)

	timeout := time.Duration(sys.LLMTimeoutMs) * time.Millisecond

	var clients []llm.LLMClient
	for _, model := range cfg.Models {
		client, err := NewClient(f.provider, apiKey, model, baseURL, options, timeout)
		if err != nil {
			slog.Error("Failed to create client", "provider", f.provider, "model", model, "error", err)
			continue
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	llm.RegisterProvider("groq", &Factory{provider: "groq", defaultBaseURL: groqBaseURL})
	llm.RegisterProvider("openai", &Factory{provider: "openai"})
}
