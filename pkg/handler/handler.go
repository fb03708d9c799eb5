package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookwyrm/pkg/api"
	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"
)

// ChatHandler connects the gateway to the recommendation engine. It owns
// per-session histories, intercepts slash commands, and routes everything
// else through the engine's reasoning loop.
type ChatHandler struct {
	engine       api.Agent
	responder    api.MessageResponder
	sessions     *llm.SessionManager
	systemConfig *config.Store
}

// NewChatHandler initializes a ChatHandler instance. The responder is
// injected later by the gateway builder via SetResponder.
func NewChatHandler(engine api.Agent, sessions *llm.SessionManager, sysCfg *config.Store) *ChatHandler {
	return &ChatHandler{
		engine:       engine,
		sessions:     sessions,
		systemConfig: sysCfg,
	}
}

// SetResponder implements api.ResponderAware.
func (h *ChatHandler) SetResponder(responder api.MessageResponder) {
	h.responder = responder
}

// sessionID scopes one conversation to one channel chat, so concurrent
// users never share context.
func sessionID(session api.SessionContext) string {
	return session.ChannelID + "_" + session.ChatID
}

// OnMessage is the entry point for every inbound user message.
func (h *ChatHandler) OnMessage(msg *api.UnifiedMessage) {
	if h.responder == nil {
		slog.Error("Handler has no responder, dropping message")
		return
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return
	}

	start := time.Now()
	sid := sessionID(msg.Session)
	slog.Info("Message received", "session", sid, "user", msg.Session.Username)

	// Slash commands never reach the model or the history.
	if strings.HasPrefix(content, "/") {
		h.handleSlashCommand(sid, msg.Session, content)
		return
	}

	if err := h.responder.SendSignal(msg.Session, api.SignalThinking); err != nil {
		slog.Debug("Failed to send thinking signal", "error", err)
	}

	history := h.sessions.GetHistory(sid)

	timeout := time.Duration(h.systemConfig.Load().RunTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	answer := h.engine.Respond(ctx, content, history)

	if err := h.responder.SendReply(msg.Session, answer); err != nil {
		slog.Error("Failed to send reply", "session", sid, "error", err)
	}

	slog.Info("Turn finished", "session", sid, "duration", time.Since(start).String())
}

// handleSlashCommand executes conversation management commands.
func (h *ChatHandler) handleSlashCommand(sid string, session api.SessionContext, content string) {
	cmd := strings.Fields(content)[0]

	switch cmd {
	case "/clear":
		h.sessions.ClearSession(sid)
		h.reply(session, "Conversation cleared. What kind of books are you in the mood for?")

	case "/history":
		h.reply(session, h.renderHistory(sid))

	default:
		h.reply(session, fmt.Sprintf("Unknown command %s. Available: /clear, /history", cmd))
	}
}

// renderHistory produces a readable transcript of the user-visible turns.
func (h *ChatHandler) renderHistory(sid string) string {
	history := h.sessions.GetHistory(sid)

	var sb strings.Builder
	for _, m := range history.GetMessages() {
		if m.IsBlank() {
			continue
		}
		switch m.Role {
		case llm.RoleUser:
			fmt.Fprintf(&sb, "You: %s\n", m.Content)
		case llm.RoleAssistant:
			fmt.Fprintf(&sb, "Assistant: %s\n", m.Content)
		}
	}
	if sb.Len() == 0 {
		return "No conversation yet."
	}
	return sb.String()
}

func (h *ChatHandler) reply(session api.SessionContext, content string) {
	if err := h.responder.SendReply(session, content); err != nil {
		slog.Error("Failed to send reply", "error", err)
	}
}
