package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/openapi.json", app.GetOpenAPI)

	// Stripe calls this without a session cookie.
	r.Post("/webhook/stripe", app.StripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)

		r.Route("/screenings", func(r chi.Router) {
			r.Get("/", app.GetScreenings)
			r.Get("/genres", app.GetScreeningGenres)
			r.Get("/dates", app.GetScreeningDates)
			r.Get("/{screeningId}", app.GetScreeningById)

			r.With(app.requireAdmin).Post("/", app.CreateScreening)
			r.With(app.requireAdmin).Post("/populate", app.PopulateScreenings)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", app.Signup)
			r.Post("/signin", app.Signin)
			r.Post("/signout", app.Signout)
		})

		r.With(app.requireAuthentication).Route("/bookings", func(r chi.Router) {
			r.Post("/", app.CreateBooking)
			r.Post("/checkout", app.CreateCheckoutSession)
			r.Get("/{bookingId}", app.GetBookingById)
			r.Post("/{bookingId}/confirm", app.ConfirmPayment)
		})

		r.With(app.requireAuthentication).Route("/users/me", func(r chi.Router) {
			r.Get("/", app.GetCurrentUser)
			r.Get("/bookings", app.GetUserBookings)
		})
	})

	return r
}
