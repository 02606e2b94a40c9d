package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	HTTPAddr          string
	DatabaseURL       string
	RedisURL          string
	SearchProvider    string
	TavilyAPIKey      string
	SerpAPIKey        string
	BingAPIKey        string
	SearxngBaseURL    string
	LLMProvider       string
	LLMModel          string
	GroqAPIKey        string
	CerebrasAPIKey    string
	OpenAIAPIKey      string
	SearchResultLimit int
}

// Load loads configuration from environment variables. DATABASE_URL and
// REDIS_URL are optional: without them history and the search cache degrade
// to disabled rather than failing startup.
func Load() Config {
	return Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		SearchProvider:    getEnv("SEARCH_PROVIDER", "tavily"),
		TavilyAPIKey:      os.Getenv("TAVILY_API_KEY"),
		SerpAPIKey:        os.Getenv("SERPAPI_API_KEY"),
		BingAPIKey:        os.Getenv("BING_API_KEY"),
		SearxngBaseURL:    getEnv("SEARXNG_BASE_URL", "http://localhost:8081"),
		LLMProvider:       os.Getenv("LLM_PROVIDER"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		CerebrasAPIKey:    os.Getenv("CEREBRAS_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		SearchResultLimit: getEnvInt("SEARCH_RESULT_LIMIT", 6),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
