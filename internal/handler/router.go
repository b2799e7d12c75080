package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the chi router with the global middleware stack.
// bookingLimit, when non-nil, wraps POST /bookings.
func NewRouter(h *ReservationHandler, log *logrus.Logger, bookingLimit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	r.Route("/room-types", func(r chi.Router) {
		r.Get("/", h.ListRoomTypes)
		r.Get("/{slug}", h.GetRoomType)
	})

	r.Get("/availability", h.SearchAvailability)

	r.Route("/bookings", func(r chi.Router) {
		if bookingLimit != nil {
			r.With(bookingLimit).Post("/", h.CreateBooking)
		} else {
			r.Post("/", h.CreateBooking)
		}
		r.Get("/{code}", h.LookupBooking)
	})

	return r
}
