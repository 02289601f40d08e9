package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/movie-seat-selection/internal/push"
)

// StreamSeatMap upgrades to a WebSocket and streams seat map, countdown and
// notice events of the session's open seat selection until either side
// closes.
func (app *Application) StreamSeatMap(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	session := app.contextGetBookingSession(r)
	showtimeID := chi.URLParam(r, "showtimeId")

	screen, err := app.screens.Get(session, showtimeID)
	if err != nil {
		app.seatErrorResponse(w, r, err)
		return
	}

	conn, err := push.Upgrade(w, r)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	events, unsubscribe := screen.Subscribe()
	defer unsubscribe()

	client := push.NewClient(conn, logger)

	go func() {
		defer client.Close()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				client.Send(toSeatMapEvent(ev))
			case <-client.Done():
				return
			}
		}
	}()

	logger.Debug("seat map stream opened", "showtime_id", showtimeID)
	client.Run()
	logger.Debug("seat map stream closed", "showtime_id", showtimeID)
}
