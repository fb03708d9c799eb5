package tools

import (
	"context"
	"fmt"
	"strings"

	"bookwyrm/pkg/search"
)

// WebSearchTool is the general-purpose search capability published next to
// the five book lookups: advanced depth, answer synthesis on, raw page
// content off, at most five hits.
type WebSearchTool struct {
	search search.Searcher
}

// NewWebSearchTool builds the general search tool over the given backend.
func NewWebSearchTool(s search.Searcher) *WebSearchTool {
	return &WebSearchTool{search: s}
}

func (t *WebSearchTool) Name() string {
	return "web_search"
}

func (t *WebSearchTool) Description() string {
	return "General web search for any book-related information not covered by the specialized lookups."
}

func (t *WebSearchTool) Parameters() map[string]any {
	return map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": "The search query",
		},
	}
}

func (t *WebSearchTool) RequiredParameters() []string {
	return []string{"query"}
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (*ToolResult, error) {
	query, ok := stringArg(args, "query")
	if !ok {
		return errResult("running web search", "missing 'query' argument"), nil
	}

	resp, err := t.search.Search(ctx, query,
		search.WithMaxResults(5),
		search.WithDepth("advanced"),
		search.WithAnswer(true),
	)
	if err != nil {
		return errResult("running web search", err.Error()), nil
	}

	var sb strings.Builder
	if strings.TrimSpace(resp.Answer) != "" {
		fmt.Fprintf(&sb, "Answer: %s\n\n", resp.Answer)
	}
	sb.WriteString(formatNumbered(fmt.Sprintf("Results for '%s':", query), resp.Results))
	return textResult(sb.String()), nil
}
