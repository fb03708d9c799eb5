package gemini

import (
	"context"
	"fmt"
	"strings"

	"bookwyrm/pkg/llm"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/genai"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a Google Gemini chat client.
type Client struct {
	client  *genai.Client
	model   string
	options map[string]any
}

// NewClient creates a Gemini client for a single model and API key.
func NewClient(apiKey, model string, options map[string]any) (*Client, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		options: options,
	}, nil
}

func (c *Client) Provider() string {
	return "gemini"
}

// IsTransientError implements llm.LLMClient.
func (c *Client) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	// 503 Service Unavailable / model overloaded
	if strings.Contains(msg, "503") || strings.Contains(msg, "overloaded") {
		return true
	}
	// 429 rate limits
	if strings.Contains(msg, "429") || strings.Contains(msg, "resource exhausted") {
		return true
	}
	// occasional 500s from the API
	if strings.Contains(msg, "500") || strings.Contains(msg, "internal error") {
		return true
	}
	return strings.Contains(msg, "context deadline exceeded")
}

// Chat implements llm.LLMClient with a single blocking GenerateContent call.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (*llm.ChatResult, error) {
	contents, systemInstruction, err := c.convertMessages(messages)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Tools:             c.convertTools(tools),
	}
	if t, ok := c.options["temperature"].(float64); ok {
		cfg.Temperature = genai.Ptr(float32(t))
	}
	if maxTok, ok := c.options["max_tokens"].(float64); ok {
		cfg.MaxOutputTokens = int32(maxTok)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini chat: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini chat: empty response")
	}

	candidate := resp.Candidates[0]
	result := &llm.ChatResult{
		StopReason: normalizeStopReason(candidate.FinishReason),
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			argsB, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("gemini chat: marshal tool args: %w", err)
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = part.FunctionCall.Name
			}
			result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: string(argsB),
			})
		}
	}
	result.Content = text.String()
	if len(result.ToolCalls) > 0 {
		result.StopReason = llm.StopReasonToolCalls
	}

	if u := resp.UsageMetadata; u != nil {
		result.Usage = &llm.LLMUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	return result, nil
}

// convertMessages maps the internal transcript onto Gemini contents. The
// system message becomes SystemInstruction, tool results become
// FunctionResponse parts on the user role, and assistant tool calls are
// echoed back as FunctionCall parts.
func (c *Client) convertMessages(messages []llm.Message) ([]*genai.Content, *genai.Content, error) {
	var contents []*genai.Content
	var systemInstruction *genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			if msg.Content != "" {
				systemInstruction = &genai.Content{
					Parts: []*genai.Part{{Text: msg.Content}},
				}
			}

		case llm.RoleTool:
			// Tool results ride on the user role in Gemini.
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       msg.ToolCallID,
						Name:     msg.ToolName,
						Response: map[string]any{"result": msg.Content},
					},
				}},
			})

		case llm.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, nil, fmt.Errorf("gemini: parse tool call args for %q: %w", tc.Name, err)
					}
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   tc.ID,
						Name: tc.Name,
						Args: args,
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		default:
			if msg.Content != "" {
				contents = append(contents, &genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: msg.Content}},
				})
			}
		}
	}

	return contents, systemInstruction, nil
}

// convertTools builds FunctionDeclarations, round-tripping each parameter
// schema through JSON into the SDK's typed schema.
func (c *Client) convertTools(tools []llm.ToolSpec) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	fds := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}
		schemaB, _ := json.Marshal(map[string]any{
			"type":       "object",
			"properties": t.Parameters,
			"required":   t.Required,
		})
		var schema genai.Schema
		if err := json.Unmarshal(schemaB, &schema); err == nil {
			fd.Parameters = &schema
		}
		fds = append(fds, fd)
	}

	return []*genai.Tool{{FunctionDeclarations: fds}}
}

func normalizeStopReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop, "":
		return llm.StopReasonStop
	case genai.FinishReasonMaxTokens:
		return llm.StopReasonLength
	default:
		return string(reason)
	}
}
