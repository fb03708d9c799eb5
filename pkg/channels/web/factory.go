package web

import (
	"fmt"

	"bookwyrm/pkg/api"
	"bookwyrm/pkg/channels"
	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"

	jsoniter "github.com/json-iterator/go"
)

// WebFactory builds web channels.
type WebFactory struct{}

// Create implements channels.ChannelFactory.
func (f *WebFactory) Create(rawConfig jsoniter.RawMessage, sessions *llm.SessionManager, system *config.SystemConfig) (api.Channel, error) {
	pCfg := WebConfig{Port: 8080}

	if err := json.Unmarshal(rawConfig, &pCfg); err != nil {
		return nil, fmt.Errorf("failed to parse web config: %w", err)
	}

	return NewWebChannel(pCfg, sessions), nil
}

func init() {
	channels.RegisterChannel("web", &WebFactory{})
}
