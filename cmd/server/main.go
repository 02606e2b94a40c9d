package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	appfx "github.com/amityadav/askgrid/internal/fx"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create and run the FX application
	// FX automatically:
	// 1. Resolves all dependencies (like Spring @Autowired)
	// 2. Manages lifecycle (OnStart/OnStop hooks)
	// 3. Handles graceful shutdown on SIGINT/SIGTERM
	app := fx.New(
		appfx.ConfigModule,  // Provides: config.Config
		appfx.StoreModule,   // Provides: *store.PostgresStore (optional)
		appfx.CacheModule,   // Provides: *redis.Client, *cache.ResultCache
		appfx.SearchModule,  // Provides: *search.Registry
		appfx.GatewayModule, // Provides: *gateway.Gateway
		appfx.AIModule,      // Provides: ai.Provider
		appfx.ChatModule,    // Provides: *chat.Engine
		appfx.ServerModule,  // Starts the HTTP server

		// Use simple console logger for cleaner output
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ConsoleLogger{W: log.Writer()}
		}),
	)

	// Run blocks until the app receives a shutdown signal
	app.Run()
}
