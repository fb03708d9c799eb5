package ollamalm

import (
	"fmt"
	"maps"
	"time"

	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"
)

type Factory struct{}

func (f *Factory) Create(cfg llm.ProviderGroupConfig, system *config.SystemConfig) ([]llm.LLMClient, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("ollama: at least one model is required")
	}

	options := map[string]any{
		"temperature": system.Temperature,
		"max_tokens":  float64(system.MaxTokens),
	}
	maps.Copy(options, cfg.Options)

	timeout := time.Duration(system.LLMTimeoutMs) * time.Millisecond

	clients := make([]llm.LLMClient, 0, len(cfg.Models))
	for _, model := range cfg.Models {
		client, err := NewClient(model, cfg.BaseURL, options, timeout)
		if err != nil {
			return nil, fmt.Errorf("ollama model %s: %w", model, err)
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	llm.RegisterProvider("ollama", &Factory{})
}
