package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amityadav/askgrid/internal/search"
)

// Entries expire via TTL only; there is no explicit invalidation.
const (
	keyPrefix = "search:"
	entryTTL  = 2 * time.Hour
)

// Error wraps a cache backend failure. It is logged at the boundary and never
// propagated: a broken cache behaves exactly like an empty one.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "cache " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ResultCache is a cache-aside store for search result sets, keyed by the raw
// query text. A nil Redis client means caching is disabled: every Get is a
// miss and every Put is a no-op.
type ResultCache struct {
	rdb *redis.Client
}

// New creates a result cache over the given Redis client (may be nil)
func New(rdb *redis.Client) *ResultCache {
	return &ResultCache{rdb: rdb}
}

// Key derives the cache key for a query. The query is used verbatim:
// case or whitespace differences produce distinct keys.
func Key(query string) string {
	return keyPrefix + query
}

// Get returns the cached result set for the query, or ok=false on a miss.
// Backend failures are logged and reported as misses.
func (c *ResultCache) Get(ctx context.Context, query string) (*search.ResultSet, bool) {
	if c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, Key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("[Cache] Get failed, treating as miss: %v", &Error{Op: "get", Err: err})
		return nil, false
	}

	var rs search.ResultSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		log.Printf("[Cache] Corrupt entry for %q, treating as miss: %v", query, err)
		return nil, false
	}

	log.Printf("[Cache] Hit for query: %q (%d results)", query, len(rs.Results))
	return &rs, true
}

// Put stores the result set under the query key with the fixed TTL.
// Best-effort: failures are logged and swallowed.
func (c *ResultCache) Put(ctx context.Context, query string, rs *search.ResultSet) {
	if c.rdb == nil {
		return
	}

	raw, err := json.Marshal(rs)
	if err != nil {
		log.Printf("[Cache] Put skipped, marshal failed: %v", err)
		return
	}

	if err := c.rdb.Set(ctx, Key(query), raw, entryTTL).Err(); err != nil {
		log.Printf("[Cache] Put failed, continuing without cache: %v", &Error{Op: "set", Err: err})
		return
	}

	log.Printf("[Cache] Stored %d results for query: %q (ttl %s)", len(rs.Results), query, entryTTL)
}
