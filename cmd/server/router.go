package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/phrazzld/taskboard-api/internal/api"
	apimiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/ws"
)

// authRateLimit caps requests per client IP on the credential endpoints.
// bcrypt makes each attempt expensive server-side; this keeps a single IP
// from hammering it.
const (
	authRateLimit       = 10
	authRateLimitWindow = time.Minute
)

// setupRouter builds the chi router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.Trace)

	authHandler := api.NewAuthHandler(app.sessions, app.refreshTokenLifetime())
	taskHandler := api.NewTaskHandler(app.taskService)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)
	wsHandler := ws.NewHandler(app.hub, app.jwtService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public, rate limited)
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(authRateLimit, authRateLimitWindow))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.With(authMiddleware.RequireRefreshToken).
				Post("/auth/refresh", authHandler.RefreshToken)
		})

		// Task endpoints (access token required)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{id}", taskHandler.Get)
			r.Patch("/tasks/{id}", taskHandler.Update)
			r.Delete("/tasks/{id}", taskHandler.Delete)
		})

		// Realtime endpoint; authentication happens in the websocket
		// handshake, not here.
		r.Get("/ws", wsHandler.ServeHTTP)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
