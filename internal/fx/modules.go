package fx

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/amityadav/askgrid/internal/ai"
	"github.com/amityadav/askgrid/internal/bing"
	"github.com/amityadav/askgrid/internal/cache"
	"github.com/amityadav/askgrid/internal/chat"
	"github.com/amityadav/askgrid/internal/config"
	"github.com/amityadav/askgrid/internal/gateway"
	"github.com/amityadav/askgrid/internal/search"
	"github.com/amityadav/askgrid/internal/searxng"
	"github.com/amityadav/askgrid/internal/serpapi"
	"github.com/amityadav/askgrid/internal/store"
	"github.com/amityadav/askgrid/internal/tavily"
)

// ============================================================================
// FX MODULES - Group related providers together (like Spring @Configuration)
// ============================================================================

// ConfigModule provides application configuration
var ConfigModule = fx.Module("config",
	fx.Provide(config.Load),
)

// StoreModule provides database connectivity (optional)
var StoreModule = fx.Module("store",
	fx.Provide(NewPostgresStore),
)

// CacheModule provides the Redis-backed search result cache
var CacheModule = fx.Module("cache",
	fx.Provide(
		NewRedisClient,
		NewResultCache,
	),
)

// SearchModule provides the search registry with the configured provider
var SearchModule = fx.Module("search",
	fx.Provide(NewSearchRegistry),
)

// GatewayModule provides the cache-aside search gateway
var GatewayModule = fx.Module("gateway",
	fx.Provide(NewSearchGateway),
)

// AIModule provides the answer LLM provider
var AIModule = fx.Module("ai",
	fx.Provide(NewAnswerProvider),
)

// ChatModule provides the chat engine
var ChatModule = fx.Module("chat",
	fx.Provide(NewChatEngine),
)

// ============================================================================
// PROVIDER FUNCTIONS - Constructors that FX will call automatically
// ============================================================================

// NewPostgresStore creates the database connection (nil when DB is disabled)
func NewPostgresStore(cfg config.Config) (*store.PostgresStore, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("[FX] PostgresStore disabled (no DATABASE_URL), history will be unavailable")
		return nil, nil
	}

	ctx := context.Background()
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[FX] PostgresStore initialized")
	return st, nil
}

// NewRedisClient creates the shared Redis client (nil when cache is disabled)
func NewRedisClient(cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		log.Printf("[FX] Redis disabled (no REDIS_URL), search cache will always miss")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	log.Printf("[FX] Redis client initialized (%s)", opts.Addr)
	return rdb, nil
}

// NewResultCache creates the search result cache over the Redis client
func NewResultCache(rdb *redis.Client) *cache.ResultCache {
	c := cache.New(rdb)
	log.Printf("[FX] ResultCache initialized (enabled=%v)", rdb != nil)
	return c
}

// NewSearchRegistry creates the registry with the one configured provider
func NewSearchRegistry(cfg config.Config) *search.Registry {
	registry := search.NewRegistry()

	switch cfg.SearchProvider {
	case "tavily":
		if cfg.TavilyAPIKey == "" {
			log.Fatal("[FX] SEARCH_PROVIDER=tavily requires TAVILY_API_KEY")
		}
		registry.Register(tavily.NewClient(cfg.TavilyAPIKey))
	case "serpapi":
		if cfg.SerpAPIKey == "" {
			log.Fatal("[FX] SEARCH_PROVIDER=serpapi requires SERPAPI_API_KEY")
		}
		registry.Register(serpapi.NewClient(cfg.SerpAPIKey))
	case "bing":
		if cfg.BingAPIKey == "" {
			log.Fatal("[FX] SEARCH_PROVIDER=bing requires BING_API_KEY")
		}
		registry.Register(bing.NewClient(cfg.BingAPIKey))
	case "searxng":
		registry.Register(searxng.NewClient(cfg.SearxngBaseURL))
	default:
		log.Fatalf("[FX] Unknown SEARCH_PROVIDER: %q (supported: tavily, serpapi, bing, searxng)", cfg.SearchProvider)
	}

	log.Printf("[FX] SearchRegistry initialized (provider: %s)", cfg.SearchProvider)
	return registry
}

// NewSearchGateway creates the cache-aside gateway
func NewSearchGateway(registry *search.Registry, c *cache.ResultCache, cfg config.Config) *gateway.Gateway {
	gw := gateway.New(registry, c, cfg.SearchResultLimit)
	log.Printf("[FX] SearchGateway initialized (result limit: %d)", cfg.SearchResultLimit)
	return gw
}

// NewAnswerProvider creates the LLM provider for rephrasing, planning,
// synthesis and follow-ups. LLM_PROVIDER pins a backend; otherwise the first
// configured key wins, with Groq+Cerebras combined for fallback.
func NewAnswerProvider(cfg config.Config) ai.Provider {
	if cfg.LLMProvider != "" {
		key := map[string]string{
			"groq":     cfg.GroqAPIKey,
			"cerebras": cfg.CerebrasAPIKey,
			"openai":   cfg.OpenAIAPIKey,
		}[cfg.LLMProvider]
		provider := ai.NewLLMProvider(cfg.LLMProvider, key, cfg.LLMModel)
		log.Printf("[FX] AnswerProvider initialized (%s)", provider.Name())
		return provider
	}

	if cfg.GroqAPIKey != "" {
		groq := ai.NewLLMProvider("groq", cfg.GroqAPIKey, cfg.LLMModel)
		if cfg.CerebrasAPIKey != "" {
			cerebras := ai.NewLLMProvider("cerebras", cfg.CerebrasAPIKey, cfg.LLMModel)
			log.Printf("[FX] AnswerProvider initialized (MultiProvider: Groq + Cerebras)")
			return ai.NewMultiProvider(groq, cerebras)
		}
		log.Printf("[FX] AnswerProvider initialized (Groq)")
		return groq
	}
	if cfg.CerebrasAPIKey != "" {
		log.Printf("[FX] AnswerProvider initialized (Cerebras)")
		return ai.NewLLMProvider("cerebras", cfg.CerebrasAPIKey, cfg.LLMModel)
	}
	if cfg.OpenAIAPIKey != "" {
		log.Printf("[FX] AnswerProvider initialized (OpenAI)")
		return ai.NewLLMProvider("openai", cfg.OpenAIAPIKey, cfg.LLMModel)
	}

	log.Fatal("[FX] No LLM provider configured. Set GROQ_API_KEY, CEREBRAS_API_KEY or OPENAI_API_KEY")
	return nil
}

// ChatEngineParams groups dependencies for the chat engine
type ChatEngineParams struct {
	fx.In
	Gateway *gateway.Gateway
	LLM     ai.Provider
	Store   *store.PostgresStore `optional:"true"`
}

// NewChatEngine creates the chat engine
func NewChatEngine(p ChatEngineParams) *chat.Engine {
	// Keep the interface nil when the concrete store is nil, so the engine's
	// nil check stays meaningful
	var st store.Store
	if p.Store != nil {
		st = p.Store
	}

	engine := chat.NewEngine(p.Gateway, p.LLM, st, p.LLM.Name())
	log.Printf("[FX] ChatEngine initialized (persistence=%v)", st != nil)
	return engine
}
