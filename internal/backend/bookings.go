package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/shopspring/decimal"
)

type bookingRequest struct {
	MovieID       string          `json:"movieId"`
	TheaterID     string          `json:"theaterId"`
	ShowtimeID    string          `json:"showtimeId"`
	Showtime      localDateTime   `json:"showtime"`
	Seats         []string        `json:"seats"`
	SeatIDs       []string        `json:"seatIds,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

type bookingPayload struct {
	ID           string          `json:"id"`
	TicketNumber string          `json:"ticketNumber"`
	QrCode       string          `json:"qrCode"`
	Status       string          `json:"status"`
	Seats        []string        `json:"seats"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	BookingDate  localDateTime   `json:"bookingDate"`
}

func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	body := bookingRequest{
		MovieID:       req.MovieID,
		TheaterID:     req.TheaterID,
		ShowtimeID:    req.ShowtimeID,
		Showtime:      localDateTime{req.Showtime},
		Seats:         req.Seats,
		SeatIDs:       req.SeatIDs,
		TotalAmount:   req.TotalAmount,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		CustomerPhone: req.Customer.Phone,
		PaymentMethod: req.PaymentMethod,
	}

	var payload bookingPayload

	err := c.do(ctx, http.MethodPost, "/bookings", body, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			return nil, fmt.Errorf("%w: %s", domain.ErrSeatUnavailable, apiErr.Message)
		}
		return nil, err
	}

	return &domain.Booking{
		ID:           payload.ID,
		TicketNumber: payload.TicketNumber,
		QrCode:       payload.QrCode,
		Status:       payload.Status,
		Seats:        payload.Seats,
		TotalAmount:  payload.TotalAmount,
		BookingDate:  payload.BookingDate.Time,
	}, nil
}
