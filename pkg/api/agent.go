package api

import (
	"context"

	"bookwyrm/pkg/llm"
)

// Agent is the core-facing boundary the presentation layer calls into.
// Respond always returns a non-empty answer string and never panics past
// itself; every failure below this boundary becomes a valid response.
type Agent interface {
	Respond(ctx context.Context, userText string, history *llm.ChatHistory) string
	RegisterTool(tools ...Tool)
}
