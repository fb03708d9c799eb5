package channels

import (
	"log/slog"

	"bookwyrm/pkg/api"
	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"

	jsoniter "github.com/json-iterator/go"
)

// LoadFromConfig resolves a factory for each configured channel and builds
// the channel instances. Unknown channel types and creation failures are
// logged and skipped so one bad channel block cannot stop the rest.
func LoadFromConfig(configs map[string]jsoniter.RawMessage, sessions *llm.SessionManager, system *config.SystemConfig) []api.Channel {
	var out []api.Channel
	for name, rawConfig := range configs {
		factory, ok := GetChannelFactory(name)
		if !ok {
			slog.Warn("Unknown channel type", "name", name)
			continue
		}

		channel, err := factory.Create(rawConfig, sessions, system)
		if err != nil {
			slog.Error("Failed to create channel", "name", name, "error", err)
			continue
		}

		// A nil channel without an error means the factory decided the
		// channel should stay disabled.
		if channel == nil {
			continue
		}

		out = append(out, channel)
		slog.Info("Channel created", "name", name)
	}
	return out
}
