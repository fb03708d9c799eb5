package llm

import (
	"context"
	"testing"

	"bookwyrm/pkg/config"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	client LLMClient
}

func (f *stubFactory) Create(cfg ProviderGroupConfig, sys *config.SystemConfig) ([]LLMClient, error) {
	return []LLMClient{f.client}, nil
}

func TestNewFromConfigChainOwnsRetryPolicy(t *testing.T) {
	// The fallback chain is the only retry layer: provider clients are
	// built without SDK-level retries, so every attempt against a failing
	// provider comes out of the chain's budget and nowhere else.
	flaky := &flakyClient{failures: 10, transient: true}
	RegisterProvider("flakytest", &stubFactory{client: flaky})

	sys := config.DefaultSystemConfig()
	sys.MaxRetries = 3
	sys.RetryDelayMs = 1

	cfg := &config.Config{LLM: jsoniter.RawMessage(`[{"type":"flakytest","models":["m"]}]`)}
	client, err := NewFromConfig(cfg, sys)
	require.NoError(t, err)

	fb, ok := client.(*FallbackClient)
	require.True(t, ok, "NewFromConfig must wrap clients in a FallbackClient")
	assert.Equal(t, 3, fb.MaxRetries)

	_, err = client.Chat(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, 3, flaky.calls)
}
