package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookwyrm/pkg/api"
	"bookwyrm/pkg/config"
	"bookwyrm/pkg/llm"
	"bookwyrm/pkg/tools"
	"bookwyrm/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Engine manages the core reasoning loop: it alternates between reasoning
// engine calls and tool execution until a final answer or a ceiling is
// reached. It implements api.Agent.
//
// The loop is strictly sequential: each tool call blocks until it returns
// or its own timeout elapses; ceilings are checked between steps, never
// mid-call, so the per-call timeouts and the wall-clock budget compose.
type Engine struct {
	client       llm.LLMClient
	toolRegistry *tools.ToolRegistry
	appCfg       *config.Config
	sysCfg       *config.Store
}

// NewEngine initializes an Engine with config managers. Each run loads
// one SystemConfig snapshot from the store, so a hot reload takes effect
// on the next turn without racing an in-flight one.
func NewEngine(client llm.LLMClient, appCfg *config.Config, sysCfg *config.Store) *Engine {
	return &Engine{
		client: client,
		appCfg: appCfg,
		sysCfg: sysCfg,
	}
}

// RegisterTool adds one or more tools to the engine's registry.
// It automatically initializes the registry if it's currently nil.
func (e *Engine) RegisterTool(tl ...api.Tool) {
	if e.toolRegistry == nil {
		e.toolRegistry = tools.NewToolRegistry()
	}
	for _, t := range tl {
		e.toolRegistry.Register(t)
	}
}

// Respond is the core-facing boundary: one user message in, one non-empty
// answer string out. Nothing below this method throws past it — engine
// failures, tool failures and ceiling aborts all become valid answers.
// The history is appended only after the turn resolves, so a crash halfway
// through never leaves a dangling half-exchange.
func (e *Engine) Respond(ctx context.Context, userText string, history *llm.ChatHistory) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Orchestration run panicked", "error", r)
			answer = FallbackAnswer
		}
	}()

	e.ensureSystemPrompt(history)

	answer = e.run(ctx, userText, history)
	if strings.TrimSpace(answer) == "" {
		answer = FallbackAnswer
	}

	userMsg := llm.NewUserMessage(userText)
	userMsg.ID = utils.GenerateID()
	history.Add(userMsg)

	assistantMsg := llm.NewAssistantMessage(answer)
	assistantMsg.ID = utils.GenerateID()
	history.Add(assistantMsg)

	return answer
}

// ensureSystemPrompt pins the persona instruction on the history, favoring
// a config override when present.
func (e *Engine) ensureSystemPrompt(history *llm.ChatHistory) {
	prompt := DefaultSystemPrompt
	if e.appCfg != nil && e.appCfg.SystemPrompt != "" {
		prompt = e.appCfg.SystemPrompt
	}
	history.EnsureSystemMessage(prompt)
}

// run drives the Thinking <-> ToolCall state machine for one user turn.
// It returns the final answer text, the best partial text when a ceiling
// forces an abort, or "" when the engine produced nothing usable.
func (e *Engine) run(ctx context.Context, userText string, history *llm.ChatHistory) string {
	sys := e.sysCfg.Load()

	start := time.Now()
	budget := time.Duration(sys.RunTimeoutMs) * time.Millisecond

	msgs := history.Render()
	msgs = append(msgs, llm.NewUserMessage(userText))

	var specs []llm.ToolSpec
	if sys.EnableTools && e.toolRegistry != nil {
		specs = e.toolRegistry.Specs()
	}

	var partial string
	for step := 0; ; step++ {
		if step >= sys.MaxToolSteps {
			slog.WarnContext(ctx, "Step ceiling reached, aborting run",
				"steps", step, "elapsed", time.Since(start))
			return partial
		}
		if time.Since(start) >= budget {
			slog.WarnContext(ctx, "Wall-clock ceiling reached, aborting run",
				"steps", step, "elapsed", time.Since(start))
			return partial
		}

		res, err := e.think(ctx, msgs, specs, sys)
		if err != nil {
			slog.ErrorContext(ctx, "Reasoning engine call failed", "error", err)
			return partial
		}

		if res.Usage != nil {
			slog.DebugContext(ctx, "Engine usage",
				"prompt_tokens", res.Usage.PromptTokens,
				"completion_tokens", res.Usage.CompletionTokens,
				"total_tokens", res.Usage.TotalTokens)
		}
		if strings.TrimSpace(res.Content) != "" {
			partial = res.Content
		}

		if len(res.ToolCalls) == 0 {
			return res.Content
		}

		assistantMsg := llm.Message{
			ID:        utils.GenerateID(),
			Role:      llm.RoleAssistant,
			Content:   res.Content,
			ToolCalls: res.ToolCalls,
			Timestamp: time.Now().Unix(),
		}
		msgs = append(msgs, assistantMsg)

		for _, tc := range res.ToolCalls {
			text := e.resolveToolCall(ctx, tc)
			msgs = append(msgs, llm.NewToolMessage(tc, text))
		}
	}
}

// think performs one blocking reasoning engine call under its own timeout.
func (e *Engine) think(ctx context.Context, msgs []llm.Message, specs []llm.ToolSpec, sys *config.SystemConfig) (*llm.ChatResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(sys.LLMTimeoutMs)*time.Millisecond)
	defer cancel()
	return e.client.Chat(callCtx, msgs, specs)
}

// resolveToolCall executes a single tool invocation request and always
// returns result text, even if the tool panics. Tool failures are encoded
// as "Error ..." strings so they degrade the engine's context instead of
// ending the conversation.
func (e *Engine) resolveToolCall(ctx context.Context, tc llm.ToolCall) (result string) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Tool execution panicked", "tool", tc.Name, "error", r)
			result = "Error: internal tool panic"
		}
	}()

	cleanName := strings.TrimPrefix(tc.Name, "functions.")

	tool, ok := e.toolRegistry.Get(cleanName)
	if !ok {
		slog.ErrorContext(ctx, "Unknown tool call", "name", tc.Name)
		return fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
	}

	args := make(map[string]any)
	if strings.TrimSpace(tc.Arguments) != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			slog.ErrorContext(ctx, "Failed to parse tool args", "tool", cleanName, "error", err)
			return fmt.Sprintf("Error: failed to parse tool arguments: %v", err)
		}
	}

	slog.InfoContext(ctx, "Executing tool", "name", cleanName, "args", args)
	res, err := tool.Execute(ctx, args)
	if err != nil {
		slog.ErrorContext(ctx, "Tool execution error", "name", cleanName, "error", err)
		return fmt.Sprintf("Error: tool execution failed: %v", err)
	}

	if res == nil || strings.TrimSpace(res.Text) == "" {
		return "(No output)"
	}
	return res.Text
}
