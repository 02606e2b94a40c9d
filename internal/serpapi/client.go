package serpapi

import (
	"context"
	"fmt"
	"log"

	g "github.com/serpapi/google-search-results-golang"

	"github.com/amityadav/askgrid/internal/search"
)

// Client is a wrapper around the SerpApi search service
type Client struct {
	apiKey string
}

// NewClient creates a new SerpApi client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
	}
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return "serpapi"
}

// Search performs a Google search via SerpApi and returns organic results
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("SerpApi API key is not set")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	parameter := map[string]string{
		"engine":        "google",
		"q":             query,
		"google_domain": "google.com",
		"gl":            "us",
		"hl":            "en",
	}

	log.Printf("[SerpApi] Searching for: %q", query)
	s := g.NewGoogleSearch(parameter, c.apiKey)
	results, err := s.GetJSON()
	if err != nil {
		return nil, fmt.Errorf("serpapi search failed: %w", err)
	}

	// Focus on organic_results node
	organicResults, ok := results["organic_results"].([]interface{})
	if !ok {
		log.Printf("[SerpApi] No organic_results found in response")
		return []search.Result{}, nil
	}

	var resultsList []search.Result
	for _, item := range organicResults {
		if len(resultsList) >= maxResults {
			break
		}
		res, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		title, _ := res["title"].(string)
		link, _ := res["link"].(string)
		snippet, _ := res["snippet"].(string)
		date, _ := res["date"].(string)

		if title == "" || link == "" {
			continue
		}

		resultsList = append(resultsList, search.Result{
			Title:         title,
			URL:           link,
			Snippet:       snippet,
			PublishedDate: date,
		})
	}

	log.Printf("[SerpApi] Found %d organic results", len(resultsList))
	return resultsList, nil
}
