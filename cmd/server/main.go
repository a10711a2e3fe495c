package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caio/vmfleet/internal/api"
	"github.com/caio/vmfleet/internal/config"
	"github.com/caio/vmfleet/internal/discord"
	"github.com/caio/vmfleet/internal/obs"
	"github.com/caio/vmfleet/internal/policy"
	"github.com/caio/vmfleet/internal/repository/memory"
	"github.com/caio/vmfleet/internal/service"
	"github.com/caio/vmfleet/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	obs.Init()

	// All state lives in memory; the service starts from seed data on
	// every boot.
	store := memory.NewStore()
	repos := memory.NewRepositories(store)

	clock := service.SystemClock()
	if err := memory.Seed(context.Background(), repos, cfg.FounderDiscordID, clock.Now()); err != nil {
		log.Fatalf("failed to seed fleet data: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	pol := policy.New(cfg.FounderDiscordID)
	provider := discord.NewClient(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI)
	services := service.NewServices(repos, pol, provider, clock, hub, cfg)

	// Expired grants are invisible either way; the sweep just trims them.
	purgeDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.GrantPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := services.Access.PurgeExpiredGrants(context.Background())
				if err != nil {
					log.Printf("ERROR [main] grant purge failed: %v", err)
				} else if n > 0 {
					log.Printf("purged %d expired grants", n)
				}
			case <-purgeDone:
				return
			}
		}
	}()

	router := api.NewRouter(services, hub)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	close(purgeDone)
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
