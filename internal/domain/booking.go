package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ConvenienceFeeRate = decimal.RequireFromString("0.05")
	GSTRate            = decimal.RequireFromString("0.18")
)

// BookingSession identifies one browser session's booking attempt. It is
// resolved once per request and passed explicitly to seat selection and
// checkout.
type BookingSession struct {
	ID string
}

type BookingDraft struct {
	ShowtimeID      string
	ShowDateTime    time.Time
	MovieID         string
	MovieTitle      string
	MoviePosterUrl  string
	TheaterID       string
	TheaterName     string
	TheaterLocation string
	Screen          string
	SeatIDs         []string
	Seats           []string
	TotalAmount     decimal.Decimal
}

// NewBookingDraft builds the handoff record for the payment step. Seats are
// ordered by row and number, and the total is the sum of their prices.
func NewBookingDraft(showtime Showtime, seats []Seat) BookingDraft {
	ordered := make([]Seat, len(seats))
	copy(ordered, seats)
	SortSeats(ordered)

	ids := make([]string, len(ordered))
	labels := make([]string, len(ordered))
	for i, seat := range ordered {
		ids[i] = seat.ID
		labels[i] = seat.Label()
	}

	return BookingDraft{
		ShowtimeID:      showtime.ID,
		ShowDateTime:    showtime.ShowDateTime,
		MovieID:         showtime.Movie.ID,
		MovieTitle:      showtime.Movie.Title,
		MoviePosterUrl:  showtime.Movie.PosterUrl,
		TheaterID:       showtime.Theater.ID,
		TheaterName:     showtime.Theater.Name,
		TheaterLocation: showtime.Theater.Location,
		Screen:          showtime.Screen,
		SeatIDs:         ids,
		Seats:           labels,
		TotalAmount:     calculateTotalPrice(ordered),
	}
}

func calculateTotalPrice(seats []Seat) decimal.Decimal {
	total := decimal.Zero

	for _, seat := range seats {
		total = total.Add(seat.Price)
	}

	return total
}

type CostBreakdown struct {
	BaseAmount     decimal.Decimal
	ConvenienceFee decimal.Decimal
	GST            decimal.Decimal
	Total          decimal.Decimal
}

// CalculateCostBreakdown applies the convenience fee to the base amount and
// GST to base plus fee. Each charge is rounded to the nearest currency unit
// on its own before summing.
func CalculateCostBreakdown(baseAmount decimal.Decimal) CostBreakdown {
	fee := baseAmount.Mul(ConvenienceFeeRate).Round(0)
	gst := baseAmount.Add(fee).Mul(GSTRate).Round(0)

	return CostBreakdown{
		BaseAmount:     baseAmount,
		ConvenienceFee: fee,
		GST:            gst,
		Total:          baseAmount.Add(fee).Add(gst),
	}
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type BookingRequest struct {
	MovieID       string
	TheaterID     string
	ShowtimeID    string
	Showtime      time.Time
	Seats         []string
	SeatIDs       []string
	TotalAmount   decimal.Decimal
	Customer      Contact
	PaymentMethod string
}

func NewBookingRequest(draft BookingDraft, breakdown CostBreakdown, customer Contact, paymentMethod string) BookingRequest {
	return BookingRequest{
		MovieID:       draft.MovieID,
		TheaterID:     draft.TheaterID,
		ShowtimeID:    draft.ShowtimeID,
		Showtime:      draft.ShowDateTime,
		Seats:         draft.Seats,
		SeatIDs:       draft.SeatIDs,
		TotalAmount:   breakdown.Total,
		Customer:      customer,
		PaymentMethod: paymentMethod,
	}
}

type Booking struct {
	ID           string
	TicketNumber string
	QrCode       string
	Status       string
	Seats        []string
	TotalAmount  decimal.Decimal
	BookingDate  time.Time
}

type BookingConfirmation struct {
	BookingID       string
	TicketNumber    string
	QrCode          string
	Seats           []string
	TotalAmount     decimal.Decimal
	MovieTitle      string
	MoviePosterUrl  string
	TheaterName     string
	TheaterLocation string
	Screen          string
	Showtime        time.Time
}

// NewBookingConfirmation merges the backend's booking with the display fields
// of the draft. Seat labels from the backend win when present.
func NewBookingConfirmation(booking Booking, draft BookingDraft, totalAmount decimal.Decimal) BookingConfirmation {
	seats := booking.Seats
	if len(seats) == 0 {
		seats = draft.Seats
	}

	return BookingConfirmation{
		BookingID:       booking.ID,
		TicketNumber:    booking.TicketNumber,
		QrCode:          booking.QrCode,
		Seats:           seats,
		TotalAmount:     totalAmount,
		MovieTitle:      draft.MovieTitle,
		MoviePosterUrl:  draft.MoviePosterUrl,
		TheaterName:     draft.TheaterName,
		TheaterLocation: draft.TheaterLocation,
		Screen:          draft.Screen,
		Showtime:        draft.ShowDateTime,
	}
}

type BookingBackend interface {
	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
}
