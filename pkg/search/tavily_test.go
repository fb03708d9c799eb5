package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSendsRequestFields(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsoniter.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("key-123", srv.URL, srv.Client())
	_, err := c.Search(context.Background(), "best mystery books",
		WithMaxResults(4), WithDepth("advanced"), WithAnswer(true))
	require.NoError(t, err)

	assert.Equal(t, "best mystery books", got["query"])
	assert.Equal(t, "key-123", got["api_key"])
	assert.Equal(t, float64(4), got["max_results"])
	assert.Equal(t, "advanced", got["search_depth"])
	assert.Equal(t, true, got["include_answer"])
	assert.Equal(t, false, got["include_raw_content"])
}

func TestSearchDefaults(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsoniter.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("key", srv.URL, srv.Client())
	_, err := c.Search(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, float64(5), got["max_results"])
	assert.Equal(t, "basic", got["search_depth"])
	assert.Equal(t, false, got["include_answer"])
}

func TestSearchNormalizesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"answer": "synthesized",
			"results": [
				{"title": "A", "url": "https://a", "content": "first"},
				{"title": "B", "url": "https://b", "content": "  "},
				{"title": "C", "url": "https://c", "content": "third"},
				{"title": "D", "url": "https://d", "content": "fourth"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("key", srv.URL, srv.Client())
	resp, err := c.Search(context.Background(), "q", WithMaxResults(2))
	require.NoError(t, err)

	assert.Equal(t, "synthesized", resp.Answer)
	// Empty-content hits are dropped and the cap applies after filtering.
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "first", resp.Results[0].Content)
	assert.Equal(t, "third", resp.Results[1].Content)
}

func TestSearchMissingAPIKey(t *testing.T) {
	c := NewClientWithEndpoint("", "http://unused", nil)
	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is missing")
}

func TestSearchEmptyQuery(t *testing.T) {
	c := NewClientWithEndpoint("key", "http://unused", nil)
	_, err := c.Search(context.Background(), "   ")
	require.Error(t, err)
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("key", srv.URL, srv.Client())
	_, err := c.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tavily http 500")
}

func TestSearchRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results":[{"title":"A","url":"https://a","content":"hit"}]}`))
	}))
	defer srv.Close()

	c := NewClientWithEndpoint("key", srv.URL, srv.Client())
	resp, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, resp.Results, 1)
}

func TestSearchRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClientWithEndpoint("key", srv.URL, srv.Client())
	_, err := c.Search(ctx, "q")
	require.ErrorIs(t, err, context.Canceled)
}
