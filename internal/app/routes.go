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

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.validateRequest)

	r.Get("/healthcheck", app.GetHealth)

	// The session middleware buffers responses, which a WebSocket upgrade
	// cannot go through.
	r.With(app.loadBookingSession).Get("/showtimes/{showtimeId}/seat-map/events", app.StreamSeatMap)

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(app.ensureBookingSession)
		r.Use(app.forwardAuthorization)

		r.Route("/showtimes/{showtimeId}/seat-map", func(r chi.Router) {
			r.Get("/", app.GetSeatMap)
			r.Delete("/", app.LeaveSeatMap)
			r.Post("/seats/{seatId}/toggle", app.ToggleSeat)
			r.Post("/hold/extend", app.ExtendHold)
			r.Post("/proceed", app.ProceedToPayment)
		})

		r.Route("/booking", func(r chi.Router) {
			r.Get("/draft", app.GetBookingDraft)
			r.Delete("/draft", app.ClearBookingDraft)
			r.Post("/checkout", app.Checkout)
			r.Get("/confirmation", app.GetBookingConfirmation)
		})
	})

	return r
}
