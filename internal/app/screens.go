package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/movie-seat-selection/api"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/metinatakli/movie-seat-selection/internal/selection"
)

// GetSeatMap opens seat selection for the showtime, or returns the one that
// is already open, and answers with the current seat map. Notices raised
// since the last response are included once.
func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)
	showtimeID := chi.URLParam(r, "showtimeId")

	screen, err := app.screens.Open(r.Context(), session, showtimeID)
	if err != nil {
		app.contextGetLogger(r).Warn("failed to open seat selection", "showtime_id", showtimeID, "error", err)
		app.seatErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(screen.View(), screen.DrainNotices())

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) LeaveSeatMap(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)
	showtimeID := chi.URLParam(r, "showtimeId")

	_, err := app.screens.Get(session, showtimeID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	released := app.screens.Close(r.Context(), session, true)
	app.contextGetLogger(r).Info("left seat selection", "showtime_id", showtimeID, "released", released)

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)
	showtimeID := chi.URLParam(r, "showtimeId")
	seatID := chi.URLParam(r, "seatId")

	screen, err := app.screens.Get(session, showtimeID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	selected, err := screen.Toggle(r.Context(), seatID)
	switch {
	case errors.Is(err, domain.ErrToggleInProgress):
		resp := api.ToggleSeatResponse{
			SeatId:   seatID,
			Selected: selected,
			Ignored:  true,
			SeatMap:  toSeatMapResponse(screen.View(), nil),
		}

		err = app.writeJSON(w, http.StatusAccepted, resp, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	case err != nil:
		app.contextGetLogger(r).Warn("seat toggle failed", "showtime_id", showtimeID, "seat_id", seatID, "error", err)
		app.seatErrorResponse(w, r, err)
		return
	}

	resp := api.ToggleSeatResponse{
		SeatId:   seatID,
		Selected: selected,
		SeatMap:  toSeatMapResponse(screen.View(), screen.DrainNotices()),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ExtendHold(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)
	showtimeID := chi.URLParam(r, "showtimeId")

	screen, err := app.screens.Get(session, showtimeID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	expiry, err := screen.Extend(r.Context())
	if err != nil {
		app.contextGetLogger(r).Warn("extending hold failed", "showtime_id", showtimeID, "error", err)
		app.seatErrorResponse(w, r, err)
		return
	}

	resp := api.ExtendHoldResponse{
		HoldExpiresAt:    expiry,
		RemainingSeconds: screen.View().RemainingSeconds,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ProceedToPayment stores the selection as the session's booking draft. The
// seats stay held and the countdown keeps running.
func (app *Application) ProceedToPayment(w http.ResponseWriter, r *http.Request) {
	session := app.contextGetBookingSession(r)
	showtimeID := chi.URLParam(r, "showtimeId")

	screen, err := app.screens.Get(session, showtimeID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	draft, err := screen.Proceed()
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	err = app.drafts.SetCurrentBooking(r.Context(), session.ID, draft)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("booking draft created", "showtime_id", showtimeID, "seat_ids", draft.SeatIDs)

	err = app.writeJSON(w, http.StatusOK, toBookingDraftResponse(draft), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(view selection.View, notices []domain.Notice) api.SeatMapResponse {
	resp := api.SeatMapResponse{
		Showtime:         toShowtime(view.Showtime),
		SeatRows:         make([]api.SeatRow, 0, len(view.Rows)),
		SelectedSeatIds:  view.SelectedSeatIDs,
		SelectedSeats:    view.SelectedLabels,
		TotalAmount:      view.TotalAmount,
		MaxSeats:         view.MaxSeats,
		AvailableSeats:   view.AvailableSeats,
		HoldExpiresAt:    view.HoldExpiry,
		RemainingSeconds: view.RemainingSeconds,
		Notices:          make([]api.Notice, 0, len(notices)),
	}

	for _, row := range view.Rows {
		seats := make([]api.Seat, 0, len(row.Seats))
		for _, seat := range row.Seats {
			seats = append(seats, api.Seat{
				Id:     seat.ID,
				Row:    seat.Row,
				Number: seat.Number,
				Label:  seat.Label(),
				Type:   api.SeatType(seat.Type),
				Price:  seat.Price,
				State:  api.SeatState(seat.State),
			})
		}

		resp.SeatRows = append(resp.SeatRows, api.SeatRow{Row: row.Row, Seats: seats})
	}

	for _, notice := range notices {
		resp.Notices = append(resp.Notices, toNotice(notice))
	}

	return resp
}

func toShowtime(showtime domain.Showtime) api.Showtime {
	return api.Showtime{
		Id:              showtime.ID,
		MovieId:         showtime.MovieID,
		MovieTitle:      showtime.Movie.Title,
		MoviePosterUrl:  showtime.Movie.PosterUrl,
		TheaterId:       showtime.TheaterID,
		TheaterName:     showtime.Theater.Name,
		TheaterLocation: showtime.Theater.Location,
		Screen:          showtime.Screen,
		StartsAt:        showtime.ShowDateTime,
		TicketPrice:     showtime.TicketPrice,
	}
}

func toNotice(notice domain.Notice) api.Notice {
	return api.Notice{
		Kind:    string(notice.Kind),
		SeatId:  notice.SeatID,
		Message: notice.Message,
		At:      notice.At,
	}
}

func toSeatMapEvent(ev selection.Event) api.SeatMapEvent {
	switch ev.Type {
	case selection.EventView:
		seatMap := toSeatMapResponse(*ev.View, nil)
		return api.SeatMapEvent{Type: api.SeatMapEventView, SeatMap: &seatMap}
	case selection.EventNotice:
		notice := toNotice(*ev.Notice)
		return api.SeatMapEvent{Type: api.SeatMapEventNotice, Notice: &notice}
	default:
		remaining := ev.RemainingSeconds
		return api.SeatMapEvent{Type: api.SeatMapEventCountdown, RemainingSeconds: &remaining}
	}
}
