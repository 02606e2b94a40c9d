package bing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amityadav/askgrid/internal/search"
)

const apiURL = "https://api.bing.microsoft.com/v7.0/search"

// Client is a Bing Web Search API client
type Client struct {
	apiKey string
	client *http.Client
}

// NewClient creates a new Bing API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// webPage represents a single web page entry in the Bing response
type webPage struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	DatePublished string `json:"datePublished,omitempty"`
}

// searchResponse represents the relevant parts of the Bing response
type searchResponse struct {
	WebPages struct {
		Value []webPage `json:"value"`
	} `json:"webPages"`
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return "bing"
}

// Search implements the search.Provider interface
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("Bing API key is not set")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResults))

	log.Printf("[Bing] Searching for: %q (max %d results)", query, maxResults)

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[Bing] Response status: %d", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error: %d %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	pages := searchResp.WebPages.Value
	if len(pages) > maxResults {
		pages = pages[:maxResults]
	}

	log.Printf("[Bing] Found %d results for query: %s", len(pages), query)

	results := make([]search.Result, len(pages))
	for i, p := range pages {
		results[i] = search.Result{
			Title:         p.Name,
			URL:           p.URL,
			Snippet:       p.Snippet,
			PublishedDate: p.DatePublished,
		}
	}
	return results, nil
}
