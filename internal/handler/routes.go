package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full API router. adminCode is the shared secret for
// the administrative endpoints; an empty code disables them.
func Routes(h *OutingHandler, adminCode string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/outings", func(r chi.Router) {
		r.Get("/", h.ListOutings)
		r.Get("/{id}", h.GetOuting)
		r.Post("/{id}/register", h.Register)
		r.Put("/{id}/registrations/{regID}", h.EditRegistration)
		r.Delete("/{id}/registrations/{regID}", h.CancelRegistration)
		r.Post("/{id}/waitlist", h.JoinWaitlist)
		r.Get("/{id}/status", h.Status)
	})

	r.Route("/admin/outings", func(r chi.Router) {
		r.Use(AdminOnly(adminCode))
		r.Get("/", h.ListOutingsAdmin)
		r.Post("/", h.CreateOuting)
		r.Put("/{id}", h.UpdateOuting)
	})

	return r
}
