/**
 * @description
 * This file sets up the HTTP router using go-chi/chi. It applies logging,
 * recovery, timeout, and permissive CORS middleware, and maps routes to
 * handlers. All entitlement routes sit behind bearer-token authentication.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the entitlement routes.
func NewRouter(h *Handler, jwksURL string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	// Permissive CORS: these endpoints are called straight from the browser
	// app. The header allow-list is fixed; preflight OPTIONS is answered here
	// before auth runs.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Entitlement service is healthy"))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		r.Post("/billing/checkout", h.handleStartCheckout)
		r.Post("/billing/portal", h.handleOpenPortal)
		r.Get("/subscription/status", h.handleSubscriptionStatus)
		r.Post("/verify/request", h.handleRequestCode)
		r.Post("/verify/confirm", h.handleConfirmCode)
	})

	return r
}
