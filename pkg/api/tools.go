package api

import (
	"context"
)

// Tool defines the structural interface for any lookup capability the
// assistant can execute. It includes the metadata published to the
// reasoning engine (name, description, JSON-Schema parameters) and the
// execution logic itself.
//
// Resilience contract: Execute converts every internal failure (network,
// empty results, bad arguments) into a ToolResult whose text starts with
// "Error", and returns a nil error. A failing tool degrades the engine's
// context, never the conversation.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	RequiredParameters() []string
	Execute(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// ToolResult encapsulates the outcome of a tool execution. The result is
// always text, even when the tool failed internally.
type ToolResult struct {
	Text    string         `json:"text"`
	Details map[string]any `json:"details,omitempty"` // Arbitrary technical metadata
}

// ToolRegistry defines the interface for managing and accessing tools.
// The set is fixed at process start; registration order is preserved so
// the engine always sees a stable, ordered tool list.
type ToolRegistry interface {
	Register(tool Tool)
	Get(name string) (Tool, bool)
	GetAll() []Tool
}
