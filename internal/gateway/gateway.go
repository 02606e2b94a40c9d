package gateway

import (
	"context"
	"log"

	"github.com/amityadav/askgrid/internal/search"
)

// ResultCache is the cache-aside contract the gateway needs. Implementations
// absorb backend failures: Get reports them as misses and Put swallows them.
type ResultCache interface {
	Get(ctx context.Context, query string) (*search.ResultSet, bool)
	Put(ctx context.Context, query string, rs *search.ResultSet)
}

// RetrievalError reports that the gateway could not obtain results for a query
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	return "retrieval failed for " + e.Query + ": " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Gateway is the single retrieval entry point: a result cache in front of the
// configured search provider. Concurrent identical queries during a miss are
// not deduplicated; each caller triggers its own provider call.
type Gateway struct {
	registry *search.Registry
	cache    ResultCache
	limit    int
}

// New creates a gateway over the registry and cache
func New(registry *search.Registry, cache ResultCache, resultLimit int) *Gateway {
	if resultLimit <= 0 {
		resultLimit = 6
	}
	return &Gateway{
		registry: registry,
		cache:    cache,
		limit:    resultLimit,
	}
}

// Retrieve returns results for the query, from cache when possible. A cache
// hit short-circuits the provider entirely. On a miss the provider is called
// exactly once; its failure propagates as a RetrievalError and nothing is
// written back to the cache.
func (g *Gateway) Retrieve(ctx context.Context, query string) (*search.ResultSet, error) {
	if rs, ok := g.cache.Get(ctx, query); ok {
		return rs, nil
	}

	provider, err := g.registry.Select()
	if err != nil {
		return nil, &RetrievalError{Query: query, Err: err}
	}

	results, err := provider.Search(ctx, query, g.limit)
	if err != nil {
		return nil, &RetrievalError{
			Query: query,
			Err:   &search.ProviderError{Backend: provider.Name(), Err: err},
		}
	}

	rs := &search.ResultSet{
		Query:    query,
		Provider: provider.Name(),
		Results:  results,
	}

	// Best-effort write-back; a failed put never fails the request
	g.cache.Put(ctx, query, rs)

	log.Printf("[Gateway] Retrieved %d results from %s for: %q", len(results), provider.Name(), query)
	return rs, nil
}
