package llm

import (
	"sync"
)

// SessionManager manages multiple conversation histories isolated by
// session ID. Histories are in-memory only; there is no persistence
// beyond the rolling window, and no state is shared across sessions.
type SessionManager struct {
	histories map[string]*ChatHistory
	maxTurns  int
	mu        sync.RWMutex
}

// NewSessionManager initializes a SessionManager whose histories use the
// given turn cap.
func NewSessionManager(maxTurns int) *SessionManager {
	return &SessionManager{
		histories: make(map[string]*ChatHistory),
		maxTurns:  maxTurns,
	}
}

// GetHistory retrieves the ChatHistory for a session, creating it on
// first use.
func (sm *SessionManager) GetHistory(sessionID string) *ChatHistory {
	sm.mu.RLock()
	h, ok := sm.histories[sessionID]
	sm.mu.RUnlock()

	if ok {
		return h
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Double check under lock
	if h, ok = sm.histories[sessionID]; ok {
		return h
	}

	h = NewChatHistory(sm.maxTurns)
	sm.histories[sessionID] = h
	return h
}

// ClearSession resets a session's window without tearing the session down.
func (sm *SessionManager) ClearSession(sessionID string) {
	sm.mu.RLock()
	h, ok := sm.histories[sessionID]
	sm.mu.RUnlock()

	if ok {
		h.Clear()
	}
}
