package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/selvamkrish/table-reservations-and-content/internal/observability"
	"github.com/selvamkrish/table-reservations-and-content/internal/ratelimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *ratelimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(JWTMiddleware(h.cfg.JWTSecret))
	r.Use(RateLimitMiddleware(rl))

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/v1/availability", h.GetAvailability)

	// Booking wizard sessions. The session id is the only credential a guest
	// needs; the drawer lifetime is enforced by the redis TTL.
	r.Route("/v1/booking-sessions", func(r chi.Router) {
		r.Post("/", h.CreateBookingSession)
		r.Get("/{id}", h.GetBookingSession)
		r.Post("/{id}/advance", h.AdvanceBookingSession)
		r.Post("/{id}/back", h.BackBookingSession)
		r.Post("/{id}/coupon", h.ApplyCoupon)
		r.With(RequireIdempotencyKey).Post("/{id}/submit", h.SubmitBookingSession)
		r.Delete("/{id}", h.CancelBookingSession)
	})

	r.Get("/v1/reservations/{id}", h.GetReservation)
	r.Get("/v1/reservations/{id}/qr", h.GetReservationQR)

	r.Get("/v1/me", h.GetMe)
	r.Put("/v1/me", h.UpdateMe)

	// Public content reads.
	r.Get("/v1/events", h.ListEvents)
	r.Get("/v1/experiences", h.ListExperiences)
	r.Get("/v1/offers", h.ListOffers)
	r.Get("/v1/testimonials", h.ListTestimonials)
	r.Get("/v1/venues", h.ListVenues)
	r.Get("/v1/venues/{id}", h.GetVenue)
	r.Get("/v1/venues/{id}/tables", h.ListTables)

	// Staff surface: same resource paths, gated by role.
	r.Group(func(r chi.Router) {
		r.Use(RequireStaff)

		r.Get("/v1/reservations", h.ListReservations)
		r.Patch("/v1/reservations/{id}/status", h.UpdateReservationStatus)
		r.Get("/v1/reservations/{id}/history", h.GetReservationHistory)

		r.Post("/v1/venues", h.CreateVenue)
		r.Put("/v1/venues/{id}", h.UpdateVenue)
		r.Delete("/v1/venues/{id}", h.DeleteVenue)
		r.Post("/v1/venues/{id}/tables", h.CreateTable)
		r.Put("/v1/venues/{id}/tables/{tableID}", h.UpdateTable)
		r.Delete("/v1/venues/{id}/tables/{tableID}", h.DeleteTable)

		r.Post("/v1/events", h.CreateEvent)
		r.Put("/v1/events/{id}", h.UpdateEvent)
		r.Delete("/v1/events/{id}", h.DeleteEvent)
		r.Post("/v1/experiences", h.CreateExperience)
		r.Put("/v1/experiences/{id}", h.UpdateExperience)
		r.Delete("/v1/experiences/{id}", h.DeleteExperience)
		r.Post("/v1/offers", h.CreateOffer)
		r.Put("/v1/offers/{id}", h.UpdateOffer)
		r.Delete("/v1/offers/{id}", h.DeleteOffer)
		r.Post("/v1/testimonials", h.CreateTestimonial)
		r.Put("/v1/testimonials/{id}", h.UpdateTestimonial)
		r.Delete("/v1/testimonials/{id}", h.DeleteTestimonial)
	})

	return r
}
