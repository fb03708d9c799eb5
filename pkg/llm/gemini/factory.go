package gemini

import (
	"fmt"
	"maps"

	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"
)

type Factory struct{}

func (f *Factory) Create(cfg llm.ProviderGroupConfig, system *config.SystemConfig) ([]llm.LLMClient, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini: at least one API key is required")
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("gemini: at least one model is required")
	}

	options := map[string]any{
		"temperature": system.Temperature,
		"max_tokens":  float64(system.MaxTokens),
	}
	maps.Copy(options, cfg.Options)

	clients := make([]llm.LLMClient, 0, len(cfg.APIKeys)*len(cfg.Models))
	for _, key := range cfg.APIKeys {
		for _, model := range cfg.Models {
			client, err := NewClient(key, model, options)
			if err != nil {
				return nil, fmt.Errorf("gemini model %s: %w", model, err)
			}
			clients = append(clients, client)
		}
	}
	return clients, nil
}

func init() {
	llm.RegisterProvider("gemini", &Factory{})
}
