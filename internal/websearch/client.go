package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Result is one external search hit.
type Result struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

// Content returns the body, falling back to the snippet.
func (r Result) Content() string {
	if r.Body != "" {
		return r.Body
	}
	return r.Snippet
}

// API is the external search surface: a fresh-news vertical and a
// general text search.
type API interface {
	News(ctx context.Context, query string, maxResults int) ([]Result, error)
	Text(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Client talks to a JSON search gateway. The endpoint serves both the
// news and text verticals, selected with the kind parameter.
type Client struct {
	endpoint string
	apiKey   string
	logger   *slog.Logger
	client   *http.Client
}

// NewClient creates a search client. The timeout bounds each request.
func NewClient(endpoint, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		logger:   logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// News searches the fresh-news vertical.
func (c *Client) News(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return c.do(ctx, "news", query, maxResults)
}

// Text searches the general web vertical.
func (c *Client) Text(ctx context.Context, query string, maxResults int) ([]Result, error) {
	return c.do(ctx, "text", query, maxResults)
}

func (c *Client) do(ctx context.Context, kind, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("kind", kind)
	params.Set("max", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API error: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Results, nil
}
