/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the kiosk frontend

ROUTE GROUPS:
  /api/state, /api/balance, /api/tickets ...   Kiosk reads
  /api/purchase, /api/consume*, /api/pin/*     Kiosk operations
  /api/recharge/*                              Balance recharge flows
  /api/admin/*                                 Back-office configuration

SECURITY NOTE:
  The admin group has no authentication middleware; the kiosk is assumed to
  run on a trusted local network with the admin panel behind a reverse
  proxy. The consumption endpoints are gated by the global PIN instead.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Kiosk reads
		r.Get("/state", h.GetState)
		r.Get("/balance", h.GetBalance)

		// Kiosk operations
		r.Post("/purchase", h.Purchase)
		r.Post("/consume/{typeID}", h.ConsumeGroup)
		r.Post("/consume-all", h.ConsumeAll)
		r.Post("/pin/verify", h.VerifyPin)

		// Recharge flows
		r.Route("/recharge", func(r chi.Router) {
			r.Post("/simulate", h.SimulateRecharge)
			r.Post("/checkout", h.StartCheckout)
			r.Get("/return", h.CheckoutReturn)
			r.Get("/cancel", h.CheckoutCancel)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Get("/metrics", h.GetMetrics)
			r.Post("/ticket-types", h.CreateTicketType)
			r.Put("/ticket-types/{id}", h.UpdateTicketType)
			r.Put("/pin", h.UpdatePin)
			r.Get("/payment-settings", h.GetPaymentSettings)
			r.Put("/payment-settings", h.UpdatePaymentSettings)
		})
	})

	return r
}
