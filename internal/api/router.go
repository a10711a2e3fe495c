package api

import (
	"net/http"

	"github.com/caio/vmfleet/internal/api/handlers"
	"github.com/caio/vmfleet/internal/api/middleware"
	"github.com/caio/vmfleet/internal/obs"
	"github.com/caio/vmfleet/internal/service"
	"github.com/caio/vmfleet/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

func NewRouter(services *service.Services, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(obs.Instrument)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.Access)
	vmHandler := handlers.NewVMHandler(services.Access, services.VM)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	callbackLimiter := rate.NewLimiter(rate.Limit(5), 10)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Get("/discord/url", authHandler.LoginURL)
			r.With(middleware.RateLimit(callbackLimiter)).Post("/discord/callback", authHandler.Callback)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// VM routes
			r.Route("/vms", func(r chi.Router) {
				r.Get("/", vmHandler.List)
				r.Post("/{id}/power", vmHandler.Power)
			})

			// User management routes
			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Put("/{id}/role", userHandler.SetRole)
				r.Post("/{id}/vms", userHandler.AssignVM)
				r.Put("/{id}/vms/{vmId}", userHandler.ExtendVM)
				r.Delete("/{id}/vms/{vmId}", userHandler.RevokeVM)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
