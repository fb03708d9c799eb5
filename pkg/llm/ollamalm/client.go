package ollamalm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookwyrm/pkg/llm"
	"bookwyrm/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/ollama/ollama/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to a local Ollama instance. It exists so the assistant can
// run fully offline against a local model when no hosted provider is
// configured or reachable.
type Client struct {
	client  *api.Client
	model   string
	options map[string]any
}

// NewClient creates an Ollama client for one model.
func NewClient(model, baseURL string, options map[string]any, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	var client *api.Client
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client = api.NewClient(u, httpClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		client:  client,
		model:   model,
		options: options,
	}, nil
}

// Provider returns the provider label used in logs.
func (c *Client) Provider() string {
	return "ollama"
}

// IsTransientError implements llm.LLMClient. A local daemon going away is
// worth retrying; schema errors are not.
func (c *Client) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "server busy")
}

// Chat implements llm.LLMClient with a single non-streamed chat request.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (*llm.ChatResult, error) {
	apiMessages, err := c.convertMessages(messages)
	if err != nil {
		return nil, err
	}

	apiTools, err := c.convertTools(tools)
	if err != nil {
		return nil, err
	}

	opts := map[string]any{}
	if t, ok := c.options["temperature"].(float64); ok {
		opts["temperature"] = t
	}
	if maxTok, ok := c.options["max_tokens"].(float64); ok {
		opts["num_predict"] = int(maxTok)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: apiMessages,
		Tools:    apiTools,
		Stream:   &stream,
		Options:  opts,
	}

	var final api.ChatResponse
	if err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final = resp
		return nil
	}); err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	result := &llm.ChatResult{
		Content:    final.Message.Content,
		StopReason: normalizeStopReason(final.DoneReason),
	}

	for _, tc := range final.Message.ToolCalls {
		argsJSON, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("ollama chat: marshal tool args: %w", err)
		}
		result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
			// Ollama tool calls carry no identifier, synthesize one so the
			// transcript stays joinable.
			ID:        utils.GenerateID(),
			Name:      tc.Function.Name,
			Arguments: string(argsJSON),
		})
	}

	if final.PromptEvalCount > 0 || final.EvalCount > 0 {
		result.Usage = &llm.LLMUsage{
			PromptTokens:     final.PromptEvalCount,
			CompletionTokens: final.EvalCount,
			TotalTokens:      final.PromptEvalCount + final.EvalCount,
		}
	}

	return result, nil
}

// convertMessages maps the internal model onto Ollama's message type. Tool
// calls survive the round trip through JSON since the SDK arguments type
// is map-backed.
func (c *Client) convertMessages(messages []llm.Message) ([]api.Message, error) {
	out := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		msg := api.Message{
			Role:    m.Role,
			Content: m.Content,
		}
		for _, tc := range m.ToolCalls {
			var apiTC api.ToolCall
			raw := fmt.Sprintf(`{"function":{"name":%q,"arguments":%s}}`, tc.Name, nonEmptyJSON(tc.Arguments))
			if err := json.Unmarshal([]byte(raw), &apiTC); err != nil {
				return nil, fmt.Errorf("ollama: convert tool call %q: %w", tc.Name, err)
			}
			msg.ToolCalls = append(msg.ToolCalls, apiTC)
		}
		out = append(out, msg)
	}
	return out, nil
}

// convertTools uses a JSON round trip to work around the SDK's strongly
// typed parameter schema.
func (c *Client) convertTools(tools []llm.ToolSpec) (api.Tools, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	raw := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		raw = append(raw, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters": map[string]any{
					"type":       "object",
					"properties": t.Parameters,
					"required":   t.Required,
				},
			},
		})
	}

	rawB, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal tools: %w", err)
	}
	var apiTools api.Tools
	if err := json.Unmarshal(rawB, &apiTools); err != nil {
		return nil, fmt.Errorf("ollama: unmarshal tools: %w", err)
	}
	return apiTools, nil
}

func nonEmptyJSON(s string) string {
	if strings.TrimSpace(s) == "" {
		return "{}"
	}
	return s
}

func normalizeStopReason(reason string) string {
	switch strings.ToLower(reason) {
	case "stop", "":
		return llm.StopReasonStop
	case "length":
		return llm.StopReasonLength
	default:
		return reason
	}
}
