package llm

import (
	"strings"
	"time"
)

// Message represents one conversation turn. Turns are immutable once
// appended to a ChatHistory; the orchestration loop is the only writer.
type Message struct {
	ID        string `json:"id,omitempty"`
	Role      string `json:"role"` // "user", "assistant", "system", "tool"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// ToolCalls contains the tool invocation requests produced by the
	// reasoning engine (only valid for role: assistant).
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links this message to the tool call it answers
	// (only valid for role: tool).
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolName is the name of the tool that produced this result.
	ToolName string `json:"tool_name,omitempty"`
}

// ToolCall is a tool invocation request emitted by the reasoning engine.
// Arguments is a raw JSON object string as produced by the provider.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSpec is the provider-neutral description of a callable tool,
// published to the reasoning engine on every Thinking step.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Required    []string       `json:"required"`
}

// LLMUsage carries normalized token accounting for one engine call.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is the outcome of a single blocking reasoning engine call:
// either final text, a set of tool invocation requests, or both.
type ChatResult struct {
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	StopReason string     `json:"stop_reason,omitempty"`
	Usage      *LLMUsage  `json:"usage,omitempty"`
}

// NewTextMessage builds a plain message for the given role.
func NewTextMessage(role, text string) Message {
	return Message{
		Role:      role,
		Content:   text,
		Timestamp: time.Now().Unix(),
	}
}

// NewSystemMessage builds a system instruction message.
func NewSystemMessage(text string) Message {
	return NewTextMessage(RoleSystem, text)
}

// NewUserMessage builds a user turn.
func NewUserMessage(text string) Message {
	return NewTextMessage(RoleUser, text)
}

// NewAssistantMessage builds an assistant turn.
func NewAssistantMessage(text string) Message {
	return NewTextMessage(RoleAssistant, text)
}

// NewToolMessage builds a tool-result turn answering the given call.
func NewToolMessage(call ToolCall, text string) Message {
	return Message{
		Role:       RoleTool,
		Content:    text,
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Timestamp:  time.Now().Unix(),
	}
}

// IsBlank reports whether the message carries no usable content. Blank
// turns are skipped when the history is rendered for the engine.
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == "" && len(m.ToolCalls) == 0
}
