package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bookwyrm/pkg/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher records the last query and returns canned results.
type fakeSearcher struct {
	lastQuery string
	resp      *search.Response
	err       error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts ...search.Option) (*search.Response, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return &search.Response{}, nil
	}
	return f.resp, nil
}

func twoHits() *search.Response {
	return &search.Response{
		Results: []search.Result{
			{Title: "Hit 1", URL: "https://a.example", Content: "Dune by Frank Herbert"},
			{Title: "Hit 2", URL: "https://b.example", Content: "Hyperion by Dan Simmons"},
		},
	}
}

func TestGenreToolQueryAndFormat(t *testing.T) {
	fs := &fakeSearcher{resp: twoHits()}
	tool := NewGenreTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{"genre": "science fiction"})
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("best science fiction books %d %d highly rated recommendations", year, year-1), fs.lastQuery)

	assert.Contains(t, res.Text, "Top books in science fiction:")
	assert.Contains(t, res.Text, "1. Dune by Frank Herbert\nSource: https://a.example")
	assert.Contains(t, res.Text, "2. Hyperion by Dan Simmons\nSource: https://b.example")
}

func TestSimilarToolQuery(t *testing.T) {
	fs := &fakeSearcher{resp: twoHits()}
	tool := NewSimilarTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{"book_title": "Dune"})
	require.NoError(t, err)

	assert.Equal(t, "books similar to Dune recommendations if you liked", fs.lastQuery)
	assert.Contains(t, res.Text, "Books similar to 'Dune':")
}

func TestMoodToolQuery(t *testing.T) {
	fs := &fakeSearcher{resp: twoHits()}
	tool := NewMoodTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{"mood": "uplifting"})
	require.NoError(t, err)

	assert.Equal(t, "uplifting books recommendations best rated", fs.lastQuery)
	assert.Contains(t, res.Text, "Books for uplifting mood:")
}

func TestDetailsToolQueryWithAuthor(t *testing.T) {
	fs := &fakeSearcher{resp: twoHits()}
	tool := NewDetailsTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{
		"book_title": "Dune",
		"author":     "Frank Herbert",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dune by Frank Herbert book synopsis author information reading time pages", fs.lastQuery)
	assert.Contains(t, res.Text, "Details for 'Dune':")
	// Details are not numbered.
	assert.NotContains(t, res.Text, "1. ")
}

func TestDetailsToolQueryWithoutAuthor(t *testing.T) {
	fs := &fakeSearcher{resp: twoHits()}
	tool := NewDetailsTool(fs)

	_, err := tool.Execute(context.Background(), map[string]any{"book_title": "Dune"})
	require.NoError(t, err)

	assert.Equal(t, "Dune book synopsis author information reading time pages", fs.lastQuery)
}

func TestBuyToolQuery(t *testing.T) {
	fs := &fakeSearcher{resp: twoHits()}
	tool := NewBuyTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{"book_title": "Dune"})
	require.NoError(t, err)

	assert.Equal(t, "where to buy Dune book Amazon Goodreads library online", fs.lastQuery)
	assert.Contains(t, res.Text, "Where to get 'Dune':")
}

func TestToolEmptyResults(t *testing.T) {
	fs := &fakeSearcher{}
	tool := NewGenreTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{"genre": "mystery"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "No results found.")
}

func TestToolSearchFailureBecomesResultText(t *testing.T) {
	fs := &fakeSearcher{err: errors.New("backend down")}
	tool := NewGenreTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{"genre": "mystery"})
	// Tools never surface Go errors; failures become result text.
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Error searching books by genre: backend down")
	assert.Equal(t, true, res.Details["failed"])
}

func TestToolMissingArgument(t *testing.T) {
	tool := NewGenreTool(&fakeSearcher{})

	res, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Error searching books by genre: missing 'genre' argument")
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	fs := &fakeSearcher{}
	reg := NewToolRegistry()
	reg.Register(NewGenreTool(fs))
	reg.Register(NewSimilarTool(fs))
	reg.Register(NewMoodTool(fs))
	reg.Register(NewDetailsTool(fs))
	reg.Register(NewBuyTool(fs))
	reg.Register(NewWebSearchTool(fs))

	specs := reg.Specs()
	require.Len(t, specs, 6)

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"search_books_by_genre",
		"search_similar_books",
		"search_books_by_mood",
		"get_book_details",
		"search_where_to_buy",
		"web_search",
	}, names)

	assert.Equal(t, []string{"genre"}, specs[0].Required)
}

func TestWebSearchToolIncludesAnswer(t *testing.T) {
	fs := &fakeSearcher{resp: &search.Response{
		Answer: "Dune is a 1965 novel.",
		Results: []search.Result{
			{URL: "https://a.example", Content: "Dune overview"},
		},
	}}
	tool := NewWebSearchTool(fs)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "what is Dune"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Answer: Dune is a 1965 novel.")
	assert.Contains(t, res.Text, "1. Dune overview")
}
