package handler

import (
	"context"
	"testing"

	"bookwyrm/pkg/api"
	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResponder records replies and signals sent back to channels.
type fakeResponder struct {
	replies []string
	signals []string
}

func (f *fakeResponder) SendReply(session api.SessionContext, content string) error {
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeResponder) SendSignal(session api.SessionContext, signal string) error {
	f.signals = append(f.signals, signal)
	return nil
}

// echoAgent answers with a fixed string and records its input, writing the
// exchange into the history like the real engine does.
type echoAgent struct {
	answer string
	asked  []string
}

func (a *echoAgent) Respond(ctx context.Context, userText string, history *llm.ChatHistory) string {
	a.asked = append(a.asked, userText)
	history.Add(llm.NewUserMessage(userText))
	history.Add(llm.NewAssistantMessage(a.answer))
	return a.answer
}

func (a *echoAgent) RegisterTool(tools ...api.Tool) {}

func newTestHandler(agent api.Agent) (*ChatHandler, *fakeResponder, *llm.SessionManager) {
	sessions := llm.NewSessionManager(20)
	h := NewChatHandler(agent, sessions, config.NewStore(config.DefaultSystemConfig()))
	r := &fakeResponder{}
	h.SetResponder(r)
	return h, r, sessions
}

func session(chatID string) api.SessionContext {
	return api.SessionContext{ChannelID: "telegram", ChatID: chatID, UserID: "u1", Username: "reader"}
}

func TestOnMessageRoutesThroughAgent(t *testing.T) {
	agent := &echoAgent{answer: "Try Dune."}
	h, r, _ := newTestHandler(agent)

	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "recommend sci-fi"})

	require.Equal(t, []string{"recommend sci-fi"}, agent.asked)
	require.Equal(t, []string{"Try Dune."}, r.replies)
	assert.Contains(t, r.signals, api.SignalThinking)
}

func TestOnMessageIgnoresBlankInput(t *testing.T) {
	agent := &echoAgent{answer: "unused"}
	h, r, _ := newTestHandler(agent)

	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "   "})

	assert.Empty(t, agent.asked)
	assert.Empty(t, r.replies)
}

func TestSessionsAreIsolatedPerChat(t *testing.T) {
	agent := &echoAgent{answer: "hi"}
	h, _, sessions := newTestHandler(agent)

	h.OnMessage(&api.UnifiedMessage{Session: session("1"), Content: "from chat one"})
	h.OnMessage(&api.UnifiedMessage{Session: session("2"), Content: "from chat two"})

	assert.Equal(t, 2, sessions.GetHistory("telegram_1").Len())
	assert.Equal(t, 2, sessions.GetHistory("telegram_2").Len())
	// No cross-contamination.
	msgs := sessions.GetHistory("telegram_1").GetMessages()
	assert.Equal(t, "from chat one", msgs[0].Content)
}

func TestClearCommand(t *testing.T) {
	agent := &echoAgent{answer: "hi"}
	h, r, sessions := newTestHandler(agent)

	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "hello"})
	require.Equal(t, 2, sessions.GetHistory("telegram_42").Len())

	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "/clear"})

	assert.Equal(t, 0, sessions.GetHistory("telegram_42").Len())
	// The command itself never reaches the agent.
	assert.Equal(t, []string{"hello"}, agent.asked)
	require.Len(t, r.replies, 2)
	assert.Contains(t, r.replies[1], "Conversation cleared")
}

func TestHistoryCommand(t *testing.T) {
	agent := &echoAgent{answer: "Try Dune."}
	h, r, _ := newTestHandler(agent)

	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "recommend sci-fi"})
	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "/history"})

	require.Len(t, r.replies, 2)
	assert.Contains(t, r.replies[1], "You: recommend sci-fi")
	assert.Contains(t, r.replies[1], "Assistant: Try Dune.")
}

func TestHistoryCommandEmpty(t *testing.T) {
	h, r, _ := newTestHandler(&echoAgent{answer: "x"})

	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "/history"})

	require.Len(t, r.replies, 1)
	assert.Equal(t, "No conversation yet.", r.replies[0])
}

func TestUnknownCommand(t *testing.T) {
	agent := &echoAgent{answer: "x"}
	h, r, _ := newTestHandler(agent)

	h.OnMessage(&api.UnifiedMessage{Session: session("42"), Content: "/frobnicate"})

	assert.Empty(t, agent.asked)
	require.Len(t, r.replies, 1)
	assert.Contains(t, r.replies[0], "Unknown command /frobnicate")
}
