package llm

import (
	"sync"
)

// DefaultMaxTurns is the rolling window applied when no explicit cap is
// configured: 20 user/assistant turns, i.e. 10 full exchanges.
const DefaultMaxTurns = 20

// ChatHistory manages the bounded conversation window for one session.
// A pinned system message survives truncation and does not count toward
// the cap; user and assistant turns are evicted oldest-first (FIFO) once
// the cap is exceeded.
type ChatHistory struct {
	system   *Message
	messages []Message
	maxTurns int
	mu       sync.RWMutex
}

// NewChatHistory builds a history with the given turn cap.
// A cap <= 0 falls back to DefaultMaxTurns.
func NewChatHistory(maxTurns int) *ChatHistory {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &ChatHistory{
		messages: make([]Message, 0, maxTurns),
		maxTurns: maxTurns,
	}
}

// EnsureSystemMessage pins the system instruction. Calling it again
// replaces the pinned prompt; it never appends a second system turn.
func (h *ChatHistory) EnsureSystemMessage(prompt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := NewSystemMessage(prompt)
	h.system = &msg
}

// Add appends a turn and evicts the oldest turns past the cap.
func (h *ChatHistory) Add(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	if excess := len(h.messages) - h.maxTurns; excess > 0 {
		h.messages = append(h.messages[:0:0], h.messages[excess:]...)
	}
}

// Len returns the number of turns currently held, excluding the pinned
// system message.
func (h *ChatHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// GetMessages returns a copy of the raw window, excluding the pinned
// system message.
func (h *ChatHistory) GetMessages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cp := make([]Message, len(h.messages))
	copy(cp, h.messages)
	return cp
}

// Render maps the window into the alternating message slice the reasoning
// engine expects: pinned system message first, then turns in insertion
// order. Blank or malformed turns are skipped rather than failing the
// whole render.
func (h *ChatHistory) Render() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, 0, len(h.messages)+1)
	if h.system != nil {
		out = append(out, *h.system)
	}
	for _, m := range h.messages {
		if m.IsBlank() {
			continue
		}
		switch m.Role {
		case RoleUser, RoleAssistant, RoleTool:
			out = append(out, m)
		}
	}
	return out
}

// Clear resets the window to empty. The pinned system message is kept so
// the persona survives a user-triggered reset. In-flight orchestration
// runs operate on their own rendered copy and are unaffected.
func (h *ChatHistory) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = h.messages[:0]
}
