package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

type contextKey string

const bookingSessionContextKey = contextKey("bookingSession")

func (app *Application) contextSetBookingSession(r *http.Request, session domain.BookingSession) *http.Request {
	ctx := context.WithValue(r.Context(), bookingSessionContextKey, session)
	return r.WithContext(ctx)
}

func (app *Application) contextGetBookingSession(r *http.Request) domain.BookingSession {
	session, ok := r.Context().Value(bookingSessionContextKey).(domain.BookingSession)
	if !ok {
		panic("missing booking session from context")
	}

	return session
}

// contextGetLogger returns the application logger annotated with the request
// and, when known, the booking session.
func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger := app.logger.With(
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"uri", r.URL.RequestURI(),
	)

	if session, ok := r.Context().Value(bookingSessionContextKey).(domain.BookingSession); ok {
		logger = logger.With("seat_session", session.ID)
	}

	return logger
}
