package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router with the global middleware stack and
// every application route mounted.
func NewRouter(h *Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(allowedOrigins))

	h.RegisterRoutes(r)
	return r
}

// New wraps the router into an http.Server with sane timeouts.
func New(addr string, h *Handler, allowedOrigins []string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewRouter(h, allowedOrigins),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
