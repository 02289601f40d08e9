package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/movie-seat-selection/api"
	"github.com/metinatakli/movie-seat-selection/internal/backend"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

var errSeatsTaken = errors.New("some of the selected seats are no longer available")

func (app *Application) GetBookingDraft(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)

	draft, err := app.drafts.GetCurrentBooking(r.Context(), session.ID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingDraftResponse(*draft), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ClearBookingDraft(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)

	err := app.drafts.ClearCurrentBooking(r.Context(), session.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout books the session's draft on the backend. The draft is taken out
// of the store first so that concurrent submissions book at most once; it is
// put back when the backend refuses the booking.
func (app *Application) Checkout(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	session := app.contextGetBookingSession(r)

	var input api.CheckoutRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	draft, err := app.drafts.TakeCurrentBooking(r.Context(), session.ID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	breakdown := domain.CalculateCostBreakdown(draft.TotalAmount)
	customer := domain.Contact{
		Name:  input.CustomerName,
		Email: input.CustomerEmail,
		Phone: input.CustomerPhone,
	}

	booking, err := app.bookings.CreateBooking(r.Context(), domain.NewBookingRequest(*draft, breakdown, customer, input.PaymentMethod))
	if err != nil {
		// Without an answer the booking may still have been made, so the draft
		// is not handed back for a second submit.
		if errors.Is(err, backend.ErrUnavailable) {
			logger.Error("booking outcome unknown, draft not restored", "showtime_id", draft.ShowtimeID, "seats", draft.Seats, "error", err)
			app.seatErrorResponse(w, r, fmt.Errorf("creating booking: %w", err))
			return
		}

		restoreErr := app.drafts.RestoreCurrentBooking(context.WithoutCancel(r.Context()), session.ID, *draft)
		if restoreErr != nil {
			logger.Error("failed to restore booking draft", "error", restoreErr)
		}

		if errors.Is(err, domain.ErrSeatUnavailable) {
			logger.Warn("booking refused", "showtime_id", draft.ShowtimeID, "error", err)
			app.editConflictResponseWithErr(w, r, errSeatsTaken)
			return
		}

		app.seatErrorResponse(w, r, fmt.Errorf("creating booking: %w", err))
		return
	}

	confirmation := domain.NewBookingConfirmation(*booking, *draft, breakdown.Total)

	err = app.drafts.SetLastConfirmedBooking(r.Context(), session.ID, confirmation)
	if err != nil {
		logger.Error("failed to store booking confirmation", "booking_id", booking.ID, "error", err)
	}

	// The booked seats belong to the booking now, so they are not released.
	if _, err := app.screens.Get(session, draft.ShowtimeID); err == nil {
		app.screens.Close(r.Context(), session, false)
	}

	logger.Info("booking confirmed", "booking_id", booking.ID, "showtime_id", draft.ShowtimeID, "seats", confirmation.Seats)

	err = app.writeJSON(w, http.StatusCreated, toConfirmationResponse(confirmation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingConfirmation(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)

	confirmation, err := app.drafts.GetLastConfirmedBooking(r.Context(), session.ID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toConfirmationResponse(*confirmation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingDraftResponse(draft domain.BookingDraft) api.BookingDraftResponse {
	breakdown := domain.CalculateCostBreakdown(draft.TotalAmount)

	return api.BookingDraftResponse{
		Draft: api.BookingDraft{
			ShowtimeId:      draft.ShowtimeID,
			StartsAt:        draft.ShowDateTime,
			MovieTitle:      draft.MovieTitle,
			MoviePosterUrl:  draft.MoviePosterUrl,
			TheaterName:     draft.TheaterName,
			TheaterLocation: draft.TheaterLocation,
			Screen:          draft.Screen,
			SeatIds:         draft.SeatIDs,
			Seats:           draft.Seats,
			TotalAmount:     draft.TotalAmount,
		},
		CostBreakdown: api.CostBreakdown{
			BaseAmount:     breakdown.BaseAmount,
			ConvenienceFee: breakdown.ConvenienceFee,
			Gst:            breakdown.GST,
			Total:          breakdown.Total,
		},
	}
}

func toConfirmationResponse(c domain.BookingConfirmation) api.BookingConfirmationResponse {
	return api.BookingConfirmationResponse{
		BookingId:       c.BookingID,
		TicketNumber:    c.TicketNumber,
		QrCode:          c.QrCode,
		Seats:           c.Seats,
		TotalAmount:     c.TotalAmount,
		MovieTitle:      c.MovieTitle,
		MoviePosterUrl:  c.MoviePosterUrl,
		TheaterName:     c.TheaterName,
		TheaterLocation: c.TheaterLocation,
		Screen:          c.Screen,
		StartsAt:        c.Showtime,
	}
}
