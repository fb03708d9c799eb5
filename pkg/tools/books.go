package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookwyrm/pkg/search"
)

// The five book lookup operations. Each one builds a focused query from a
// single preference dimension, runs it through the bounded search backend
// and normalizes the hits into one formatted text block.
//
// None of them ever returns a Go error: every failure is folded into an
// "Error <doing X>: <cause>" result string so a broken lookup degrades the
// reasoning engine's context instead of the conversation.

// GenreTool finds popular and highly-rated books in a specific genre.
type GenreTool struct {
	search search.Searcher
}

// NewGenreTool builds the genre lookup over the given search backend.
func NewGenreTool(s search.Searcher) *GenreTool {
	return &GenreTool{search: s}
}

func (t *GenreTool) Name() string {
	return "search_books_by_genre"
}

func (t *GenreTool) Description() string {
	return "Search for popular and highly-rated books in a specific genre (e.g., \"science fiction\", \"mystery\", \"romance\")."
}

func (t *GenreTool) Parameters() map[string]any {
	return map[string]any{
		"genre": map[string]any{
			"type":        "string",
			"description": "The genre to search for, e.g. \"science fiction\", \"mystery\", \"romance\"",
		},
	}
}

func (t *GenreTool) RequiredParameters() []string {
	return []string{"genre"}
}

func (t *GenreTool) Execute(ctx context.Context, args map[string]any) (*ToolResult, error) {
	genre, ok := stringArg(args, "genre")
	if !ok {
		return errResult("searching books by genre", "missing 'genre' argument"), nil
	}

	year := time.Now().Year()
	query := fmt.Sprintf("best %s books %d %d highly rated recommendations", genre, year, year-1)
	resp, err := t.search.Search(ctx, query, search.WithMaxResults(5))
	if err != nil {
		return errResult("searching books by genre", err.Error()), nil
	}

	return textResult(formatNumbered(fmt.Sprintf("Top books in %s:", genre), resp.Results)), nil
}

// SimilarTool finds books similar to a title the reader enjoyed.
type SimilarTool struct {
	search search.Searcher
}

// NewSimilarTool builds the similarity lookup over the given search backend.
func NewSimilarTool(s search.Searcher) *SimilarTool {
	return &SimilarTool{search: s}
}

func (t *SimilarTool) Name() string {
	return "search_similar_books"
}

func (t *SimilarTool) Description() string {
	return "Find books similar to a given book title, for readers who enjoyed it."
}

func (t *SimilarTool) Parameters() map[string]any {
	return map[string]any{
		"book_title": map[string]any{
			"type":        "string",
			"description": "The title of the book to find similar recommendations for",
		},
	}
}

func (t *SimilarTool) RequiredParameters() []string {
	return []string{"book_title"}
}

func (t *SimilarTool) Execute(ctx context.Context, args map[string]any) (*ToolResult, error) {
	title, ok := stringArg(args, "book_title")
	if !ok {
		return errResult("searching similar books", "missing 'book_title' argument"), nil
	}

	query := fmt.Sprintf("books similar to %s recommendations if you liked", title)
	resp, err := t.search.Search(ctx, query, search.WithMaxResults(5))
	if err != nil {
		return errResult("searching similar books", err.Error()), nil
	}

	return textResult(formatNumbered(fmt.Sprintf("Books similar to '%s':", title), resp.Results)), nil
}

// MoodTool finds books matching a mood or theme.
type MoodTool struct {
	search search.Searcher
}

// NewMoodTool builds the mood lookup over the given search backend.
func NewMoodTool(s search.Searcher) *MoodTool {
	return &MoodTool{search: s}
}

func (t *MoodTool) Name() string {
	return "search_books_by_mood"
}

func (t *MoodTool) Description() string {
	return "Search for books that match a specific mood or theme (e.g., \"uplifting\", \"dark\", \"thought-provoking\", \"fast-paced\")."
}

func (t *MoodTool) Parameters() map[string]any {
	return map[string]any{
		"mood": map[string]any{
			"type":        "string",
			"description": "The mood or theme, e.g. \"uplifting\", \"dark\", \"thought-provoking\", \"fast-paced\"",
		},
	}
}

func (t *MoodTool) RequiredParameters() []string {
	return []string{"mood"}
}

func (t *MoodTool) Execute(ctx context.Context, args map[string]any) (*ToolResult, error) {
	mood, ok := stringArg(args, "mood")
	if !ok {
		return errResult("searching books by mood", "missing 'mood' argument"), nil
	}

	query := fmt.Sprintf("%s books recommendations best rated", mood)
	resp, err := t.search.Search(ctx, query, search.WithMaxResults(5))
	if err != nil {
		return errResult("searching books by mood", err.Error()), nil
	}

	return textResult(formatNumbered(fmt.Sprintf("Books for %s mood:", mood), resp.Results)), nil
}

// DetailsTool fetches synopsis, author info and reading time for one book.
type DetailsTool struct {
	search search.Searcher
}

// NewDetailsTool builds the details lookup over the given search backend.
func NewDetailsTool(s search.Searcher) *DetailsTool {
	return &DetailsTool{search: s}
}

func (t *DetailsTool) Name() string {
	return "get_book_details"
}

func (t *DetailsTool) Description() string {
	return "Get detailed information about a specific book including synopsis, author info, and reading time."
}

func (t *DetailsTool) Parameters() map[string]any {
	return map[string]any{
		"book_title": map[string]any{
			"type":        "string",
			"description": "The title of the book",
		},
		"author": map[string]any{
			"type":        "string",
			"description": "(Optional) The author's name for more precise results",
		},
	}
}

func (t *DetailsTool) RequiredParameters() []string {
	return []string{"book_title"}
}

func (t *DetailsTool) Execute(ctx context.Context, args map[string]any) (*ToolResult, error) {
	title, ok := stringArg(args, "book_title")
	if !ok {
		return errResult("getting book details", "missing 'book_title' argument"), nil
	}

	query := title
	if author, ok := stringArg(args, "author"); ok {
		query += " by " + author
	}
	query += " book synopsis author information reading time pages"

	resp, err := t.search.Search(ctx, query, search.WithMaxResults(3))
	if err != nil {
		return errResult("getting book details", err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Details for '%s':\n\n", title)
	for _, r := range resp.Results {
		fmt.Fprintf(&sb, "%s\nSource: %s\n\n", r.Content, r.URL)
	}
	if len(resp.Results) == 0 {
		sb.WriteString("No details found.\n")
	}
	return textResult(sb.String()), nil
}

// BuyTool finds where to buy or borrow a specific book.
type BuyTool struct {
	search search.Searcher
}

// NewBuyTool builds the purchase lookup over the given search backend.
func NewBuyTool(s search.Searcher) *BuyTool {
	return &BuyTool{search: s}
}

func (t *BuyTool) Name() string {
	return "search_where_to_buy"
}

func (t *BuyTool) Description() string {
	return "Find where to buy or borrow a specific book (bookstores, libraries, online platforms)."
}

func (t *BuyTool) Parameters() map[string]any {
	return map[string]any{
		"book_title": map[string]any{
			"type":        "string",
			"description": "The title of the book to find purchasing options for",
		},
	}
}

func (t *BuyTool) RequiredParameters() []string {
	return []string{"book_title"}
}

func (t *BuyTool) Execute(ctx context.Context, args map[string]any) (*ToolResult, error) {
	title, ok := stringArg(args, "book_title")
	if !ok {
		return errResult("searching purchase options", "missing 'book_title' argument"), nil
	}

	query := fmt.Sprintf("where to buy %s book Amazon Goodreads library online", title)
	resp, err := t.search.Search(ctx, query, search.WithMaxResults(4))
	if err != nil {
		return errResult("searching purchase options", err.Error()), nil
	}

	return textResult(formatNumbered(fmt.Sprintf("Where to get '%s':", title), resp.Results)), nil
}

// stringArg extracts a non-blank string argument.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// formatNumbered renders hits as a numbered list of content + source URL.
func formatNumbered(header string, results []search.Result) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\nSource: %s\n\n", i+1, r.Content, r.URL)
	}
	if len(results) == 0 {
		sb.WriteString("No results found.\n")
	}
	return sb.String()
}

func textResult(text string) *ToolResult {
	return &ToolResult{Text: text}
}

func errResult(doing, cause string) *ToolResult {
	return &ToolResult{
		Text:    fmt.Sprintf("Error %s: %s", doing, cause),
		Details: map[string]any{"failed": true},
	}
}
