// Package api exposes the chat over HTTP: the REST resources, the websocket
// upgrade and the operational endpoints.
package api

import (
	"log/slog"
	"net/http"
	"room-chat/observability"

	"github.com/go-chi/chi/v5"
)

type HealthReporter interface {
	GetLatest() observability.ProcessStats
}

type RouterDeps struct {
	Log         *slog.Logger
	Auth        AuthAPI
	Chat        ChatAPI
	RateLimiter *RateLimiter
	Metrics     StatusMetrics
	// Optional
	MetricsHandler http.Handler
	WebSocket      http.Handler
	Health         HealthReporter
}

// NewRouter wires every route. Middleware order for the protected API:
//
//	Recovery -> Logging -> Authenticate -> RateLimiter
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Log.With("component", "api")
	h := &handlers{log: log, auth: deps.Auth, chat: deps.Chat}

	r := chi.NewRouter()
	r.Use(Recovery(log))
	r.Use(Logging(log, deps.Metrics))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": http.StatusNotFound, "code": "NOT_FOUND", "message": "route not found"})
	})

	if deps.WebSocket != nil {
		r.Handle("/ws", deps.WebSocket)
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Health == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "process": deps.Health.GetLatest()})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Post("/auth/verify", h.verify)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(log, deps.Auth))
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.Middleware(log))
			}

			r.Get("/auth/me", h.me)
			r.Put("/auth/me", h.updateMe)

			r.Get("/users/search", h.searchUsers)
			r.Get("/users/{id}", h.getUser)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", h.listRooms)
				r.Post("/", h.createRoom)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getRoom)
					r.Put("/", h.updateRoom)
					r.Delete("/", h.deleteRoom)
					r.Post("/join", h.joinRoom)
					r.Post("/leave", h.leaveRoom)
					r.Get("/members", h.listMembers)
					r.Delete("/members/{userID}", h.removeMember)
					r.Get("/messages", h.listMessages)
					r.Post("/messages", h.sendMessage)
					r.Get("/messages/search", h.searchMessages)
				})
			})

			r.Route("/messages/{id}", func(r chi.Router) {
				r.Get("/", h.getMessage)
				r.Put("/", h.editMessage)
				r.Delete("/", h.deleteMessage)
			})
		})
	})
	return r
}
