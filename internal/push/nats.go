package push

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject matches every seat event published by the booking backend.
const DefaultSubject = "seats.>"

// SeatEvent is the payload published when seats of a showtime change state.
type SeatEvent struct {
	Type       string    `json:"type"`
	ShowtimeID string    `json:"showtimeId"`
	SeatIDs    []string  `json:"seatIds"`
	Timestamp  time.Time `json:"timestamp"`
}

// Refresher re-polls the seat maps open for a showtime.
type Refresher interface {
	Refresh(showtimeID string) int
}

func ConnectNATS(url, name string, logger *slog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("nats error", "error", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	if !nc.IsConnected() {
		nc.Close()
		return nil, fmt.Errorf("nats connection not established")
	}

	logger.Info("connected to nats", "url", nc.ConnectedUrl())

	return nc, nil
}

// SubscribeSeatEvents triggers an immediate poll of the affected seat maps
// for every seat event received on subject. The regular poll keeps running,
// events only shorten the time until a change is seen.
func SubscribeSeatEvents(nc *nats.Conn, subject string, screens Refresher, logger *slog.Logger) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		HandleSeatEvent(msg.Data, screens, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	logger.Info("subscribed to seat events", "subject", sub.Subject)

	return sub, nil
}

// HandleSeatEvent decodes one seat event and refreshes the screens of its
// showtime. It returns how many screens were refreshed.
func HandleSeatEvent(data []byte, screens Refresher, logger *slog.Logger) int {
	var event SeatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		logger.Warn("failed to parse seat event", "error", err)
		return 0
	}

	if event.ShowtimeID == "" {
		logger.Warn("seat event without showtime", "type", event.Type)
		return 0
	}

	n := screens.Refresh(event.ShowtimeID)
	logger.Debug("seat event received", "type", event.Type, "showtime_id", event.ShowtimeID, "seat_ids", event.SeatIDs, "refreshed", n)

	return n
}
