package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LLMClient is the reasoning engine binding. One Chat call is one blocking
// Thinking step: it either yields final text or a set of tool invocation
// requests. There is no streaming; the orchestration loop is strictly
// sequential.
type LLMClient interface {
	// Chat sends the rendered conversation plus the published tool set and
	// returns the engine's next move.
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*ChatResult, error)

	// IsTransientError reports whether the error is worth retrying
	// (rate limits, 5xx, network timeouts).
	IsTransientError(err error) bool
}

// FallbackClient tries several clients in order, retrying each on
// transient failures before moving on to the next provider.
type FallbackClient struct {
	Clients    []LLMClient
	MaxRetries int
	RetryDelay time.Duration
}

// Chat implements LLMClient over the configured provider chain.
func (f *FallbackClient) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*ChatResult, error) {
	if len(f.Clients) == 0 {
		return nil, errors.New("no providers configured")
	}

	var lastErr error
	for i, client := range f.Clients {
		if i > 0 {
			slog.Warn("Previous provider failed, trying fallback provider", "index", i+1)
		}

		maxRetries := f.MaxRetries
		if maxRetries <= 0 {
			maxRetries = 1
		}

		for retry := 1; retry <= maxRetries; retry++ {
			if retry > 1 {
				slog.Info("Retrying provider", "index", i+1, "attempt", fmt.Sprintf("%d/%d", retry, maxRetries))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(retry-1) * f.RetryDelay):
				}
			}

			res, err := client.Chat(ctx, messages, tools)
			if err == nil {
				return res, nil
			}

			lastErr = err

			if client.IsTransientError(err) && retry < maxRetries {
				slog.Warn("Provider failed with transient error, retrying", "index", i+1, "error", err)
				continue
			}

			// Non-transient, or retries exhausted: move to next provider.
			slog.Error("Provider failed", "index", i+1, "error", err)
			break
		}
	}
	return nil, fmt.Errorf("all fallback providers failed, last error: %w", lastErr)
}

// IsTransientError implements LLMClient. A FallbackClient error means every
// configured provider already failed, so it is reported as permanent.
func (f *FallbackClient) IsTransientError(err error) bool {
	return false
}
