package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHistoryEvictsOldestFirst(t *testing.T) {
	h := NewChatHistory(4)

	for i := 0; i < 6; i++ {
		h.Add(NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}

	msgs := h.GetMessages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "msg-2", msgs[0].Content)
	assert.Equal(t, "msg-5", msgs[3].Content)
}

func TestChatHistorySystemMessageSurvivesEviction(t *testing.T) {
	h := NewChatHistory(2)
	h.EnsureSystemMessage("persona")

	for i := 0; i < 5; i++ {
		h.Add(NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}

	rendered := h.Render()
	require.NotEmpty(t, rendered)
	assert.Equal(t, RoleSystem, rendered[0].Role)
	assert.Equal(t, "persona", rendered[0].Content)
	// System message does not count toward the cap.
	assert.Equal(t, 2, h.Len())
}

func TestChatHistoryEnsureSystemMessageReplaces(t *testing.T) {
	h := NewChatHistory(10)
	h.EnsureSystemMessage("first")
	h.EnsureSystemMessage("second")

	rendered := h.Render()
	require.Len(t, rendered, 1)
	assert.Equal(t, "second", rendered[0].Content)
}

func TestChatHistoryRenderSkipsBlankTurns(t *testing.T) {
	h := NewChatHistory(10)
	h.Add(NewUserMessage("hello"))
	h.Add(NewAssistantMessage("")) // blank, must be skipped
	h.Add(NewAssistantMessage("hi there"))

	rendered := h.Render()
	require.Len(t, rendered, 2)
	assert.Equal(t, "hello", rendered[0].Content)
	assert.Equal(t, "hi there", rendered[1].Content)
}

func TestChatHistoryClearKeepsSystemMessage(t *testing.T) {
	h := NewChatHistory(10)
	h.EnsureSystemMessage("persona")
	h.Add(NewUserMessage("hello"))
	h.Add(NewAssistantMessage("hi"))

	h.Clear()

	assert.Equal(t, 0, h.Len())
	rendered := h.Render()
	require.Len(t, rendered, 1)
	assert.Equal(t, RoleSystem, rendered[0].Role)
}

func TestChatHistoryDefaultCap(t *testing.T) {
	h := NewChatHistory(0)
	for i := 0; i < DefaultMaxTurns+5; i++ {
		h.Add(NewUserMessage(fmt.Sprintf("msg-%d", i)))
	}
	assert.Equal(t, DefaultMaxTurns, h.Len())
}

func TestSessionManagerIsolatesSessions(t *testing.T) {
	sm := NewSessionManager(10)

	a := sm.GetHistory("telegram_1")
	b := sm.GetHistory("telegram_2")
	require.NotSame(t, a, b)

	a.Add(NewUserMessage("only in a"))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())

	// Same ID returns the same history.
	assert.Same(t, a, sm.GetHistory("telegram_1"))
}

func TestSessionManagerClearSession(t *testing.T) {
	sm := NewSessionManager(10)

	h := sm.GetHistory("web_global")
	h.Add(NewUserMessage("hello"))
	require.Equal(t, 1, h.Len())

	sm.ClearSession("web_global")
	assert.Equal(t, 0, h.Len())

	// Clearing an unknown session is a no-op.
	sm.ClearSession("nope")
}
