package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/amityadav/askgrid/internal/search"
)

// Client is a client for a self-hosted SearXNG instance
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new SearXNG client for the given instance URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SearchResult represents a single result from the SearXNG JSON API
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"publishedDate,omitempty"`
}

// SearchResponse represents the SearXNG JSON API response
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return "searxng"
}

// Search implements the search.Provider interface
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("SearXNG base URL is not set")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("pageno", "1")

	endpoint := c.baseURL + "/search?" + params.Encode()
	log.Printf("[SearXNG] Searching for: %q (max %d results)", query, maxResults)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[SearXNG] Response status: %d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error: %d %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(searchResp.Results) > maxResults {
		searchResp.Results = searchResp.Results[:maxResults]
	}

	log.Printf("[SearXNG] Found %d results for query: %s", len(searchResp.Results), query)

	results := make([]search.Result, len(searchResp.Results))
	for i, r := range searchResp.Results {
		results[i] = search.Result{
			Title:         r.Title,
			URL:           r.URL,
			Snippet:       r.Content,
			PublishedDate: r.PublishedDate,
		}
	}
	return results, nil
}
