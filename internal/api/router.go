package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/posthub/posthub/internal/api/handlers"
	"github.com/posthub/posthub/internal/api/middleware"
	"github.com/posthub/posthub/internal/media"
	"github.com/posthub/posthub/internal/realtime"
	"github.com/posthub/posthub/internal/service"
)

func NewRouter(services *service.Services, hub *realtime.Hub, payloads media.Store) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	profileHandler := handlers.NewProfileHandler(services.Profile)
	postHandler := handlers.NewPostHandler(services.Post)
	mediaHandler := handlers.NewMediaHandler(payloads)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Token)

	// Stored image payloads
	r.Get("/media/{ref}", mediaHandler.Serve)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		// Profile routes
		r.Route("/profile", func(r chi.Router) {
			r.Use(middleware.Auth(services.Token))
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
			r.Post("/password", profileHandler.ChangePassword)
		})

		// Post routes: reads are public, mutations require auth
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Get("/{postID}", postHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Token))
				r.Post("/", postHandler.Create)
				r.Put("/{postID}", postHandler.Update)
				r.Delete("/{postID}", postHandler.Delete)
				r.Post("/{postID}/like", postHandler.Like)
				r.Delete("/{postID}/like", postHandler.Unlike)
			})
		})

		// WebSocket engagement feed
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
