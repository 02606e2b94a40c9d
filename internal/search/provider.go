package search

import "context"

// Result represents a single ranked result from any provider
type Result struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	PublishedDate string `json:"published_date,omitempty"`
}

// ResultSet is an immutable snapshot of one provider call: the results in
// provider rank order plus the query and provider identity that produced them.
type ResultSet struct {
	Query    string   `json:"query"`
	Provider string   `json:"provider"` // "tavily", "serpapi", "searxng", "bing"
	Results  []Result `json:"results"`
}

// Provider is the interface all search backends must implement.
// Implementations hold no per-call state and must be safe for concurrent use.
type Provider interface {
	// Name returns the provider identifier (e.g., "tavily", "serpapi")
	Name() string

	// Search returns up to maxResults ranked results for the query
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// ProviderError reports a failed backend call along with the provider identity
type ProviderError struct {
	Backend string
	Err     error
}

func (e *ProviderError) Error() string {
	return "search provider " + e.Backend + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
