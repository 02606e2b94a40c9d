package fx

import (
	"context"
	"log"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/amityadav/askgrid/internal/chat"
	"github.com/amityadav/askgrid/internal/config"
	"github.com/amityadav/askgrid/internal/server"
	"github.com/amityadav/askgrid/internal/store"
)

// ServerModule starts the HTTP server
var ServerModule = fx.Module("server",
	fx.Invoke(StartServer),
)

// ServerParams groups dependencies for starting the server
type ServerParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Engine    *chat.Engine
	Store     *store.PostgresStore `optional:"true"`
	Config    config.Config
}

// StartServer starts the HTTP server with lifecycle management
func StartServer(p ServerParams) {
	var st store.Store
	if p.Store != nil {
		st = p.Store
	}

	services := server.Services{
		Engine: p.Engine,
		Store:  st,
	}
	handler := server.CreateRecoveryHandler(
		server.CreateCORSHandler(
			server.CreateRESTHandler(services),
		),
	)

	srv := &http.Server{
		Addr:    p.Config.HTTPAddr,
		Handler: handler,
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", p.Config.HTTPAddr)
			if err != nil {
				return err
			}

			go func() {
				log.Printf("[FX] HTTP Server listening on %s", p.Config.HTTPAddr)
				if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
					log.Printf("[FX] HTTP Server error: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Printf("[FX] Shutting down HTTP server...")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			if p.Store != nil {
				p.Store.Close()
			}
			return nil
		},
	})
}
