package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/shopspring/decimal"
)

var localDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// localDateTime accepts both RFC 3339 timestamps and the zone-less date-times
// the backend emits. Zone-less values are read as UTC.
type localDateTime struct {
	time.Time
}

func (t *localDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	s := strings.Trim(string(data), `"`)
	if s == "" {
		return nil
	}

	for _, layout := range localDateTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("cannot parse %q as date-time", s)
}

func (t localDateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format("2006-01-02T15:04:05") + `"`), nil
}

type seatPayload struct {
	ID         string          `json:"id"`
	Row        string          `json:"row"`
	Number     int             `json:"number"`
	Price      decimal.Decimal `json:"price"`
	Type       string          `json:"type"`
	IsBooked   bool            `json:"isBooked"`
	IsHeld     bool            `json:"isHeld"`
	HoldExpiry *localDateTime  `json:"holdExpiry"`
	SessionID  *string         `json:"sessionId"`
}

func (p seatPayload) toDomain() domain.Seat {
	seat := domain.Seat{
		ID:        p.ID,
		Row:       p.Row,
		Number:    p.Number,
		Price:     p.Price,
		Type:      domain.SeatType(p.Type),
		IsBooked:  p.IsBooked,
		IsHeld:    p.IsHeld,
		HoldOwner: p.SessionID,
	}

	if p.HoldExpiry != nil && !p.HoldExpiry.IsZero() {
		expiry := p.HoldExpiry.Time
		seat.HoldExpiry = &expiry
	}

	return seat
}

type holdRequest struct {
	ShowtimeID string   `json:"showtimeId"`
	SeatIDs    []string `json:"seatIds"`
	SessionID  string   `json:"sessionId,omitempty"`
}

func (c *Client) FetchSeats(ctx context.Context, showtimeID string) ([]domain.Seat, error) {
	id, err := pathParam("showtimeId", showtimeID)
	if err != nil {
		return nil, err
	}

	var payload []seatPayload

	err = c.do(ctx, http.MethodGet, "/seats/showtime/"+id, nil, &payload)
	if err != nil {
		if errors.Is(err, ErrInvalidResponse) {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSeatData, err)
		}
		return nil, err
	}

	seats := make([]domain.Seat, len(payload))
	for i, p := range payload {
		seats[i] = p.toDomain()
	}

	return seats, nil
}

func (c *Client) InitializeSeats(ctx context.Context, showtimeID string) error {
	id, err := pathParam("showtimeId", showtimeID)
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, "/seats/showtime/"+id+"/initialize", struct{}{}, nil)
}

// HoldSeats places or extends a hold on seatIDs for the session. The backend
// uses the same endpoint for both.
func (c *Client) HoldSeats(ctx context.Context, showtimeID string, seatIDs []string, sessionID string) error {
	err := c.do(ctx, http.MethodPost, "/seats/hold", holdRequest{
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
		SessionID:  sessionID,
	}, nil)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsConflict() {
		return fmt.Errorf("%w: %s", domain.ErrSeatUnavailable, apiErr.Message)
	}

	return err
}

func (c *Client) ReleaseSeats(ctx context.Context, showtimeID string, seatIDs []string) error {
	return c.do(ctx, http.MethodPost, "/seats/release", holdRequest{
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
	}, nil)
}
