// Package search wraps the Tavily web search API behind a small Searcher
// interface so lookup tools can be exercised against fakes in tests.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultEndpoint = "https://api.tavily.com/search"

// Result is one normalized search hit. The backend's heterogeneous result
// shapes are collapsed into this one canonical type at the client boundary
// before any business logic sees them.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Response carries the normalized hits plus Tavily's synthesized answer
// when answer synthesis was requested.
type Response struct {
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Searcher executes a bounded-result web search.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...Option) (*Response, error)
}

// Option configures a single search request.
type Option func(*request)

type request struct {
	Query         string `json:"query"`
	APIKey        string `json:"api_key"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	IncludeRaw    bool   `json:"include_raw_content"`
}

// WithMaxResults caps the number of hits returned (default 5).
func WithMaxResults(n int) Option {
	return func(r *request) {
		if n > 0 {
			r.MaxResults = n
		}
	}
}

// WithDepth selects Tavily's search depth: "basic" or "advanced".
func WithDepth(depth string) Option {
	return func(r *request) {
		if depth != "" {
			r.SearchDepth = depth
		}
	}
}

// WithAnswer enables Tavily's answer synthesis for the request.
func WithAnswer(enabled bool) Option {
	return func(r *request) { r.IncludeAnswer = enabled }
}

// Client calls the Tavily search API.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient constructs a Tavily client with the given request timeout.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewClientWithEndpoint constructs a client against a non-default endpoint.
// Used by tests to point the client at a local server.
func NewClientWithEndpoint(apiKey, endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiKey: apiKey, endpoint: endpoint, client: httpClient}
}

// Search posts a query to Tavily and normalizes the response.
func (c *Client) Search(ctx context.Context, query string, opts ...Option) (*Response, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("tavily: empty query")
	}

	req := request{
		Query:       query,
		APIKey:      c.apiKey,
		MaxResults:  5,
		SearchDepth: "basic",
	}
	for _, opt := range opts {
		opt(&req)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var wire struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("tavily: malformed response: %w", err)
	}

	out := &Response{Answer: wire.Answer}
	for _, r := range wire.Results {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.URL, Content: r.Content})
		if len(out.Results) >= req.MaxResults {
			break
		}
	}
	return out, nil
}

// post issues the request, backing off and retrying on 429 with the delay
// doubling each attempt up to 30s.
func (c *Client) post(ctx context.Context, payload []byte) (*http.Response, error) {
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}
