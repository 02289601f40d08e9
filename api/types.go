package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SeatType string

const (
	Regular SeatType = "REGULAR"
	Premium SeatType = "PREMIUM"
	VIP     SeatType = "VIP"
)

type SeatState string

const (
	Available SeatState = "available"
	Selected  SeatState = "selected"
	Held      SeatState = "held"
	Booked    SeatState = "booked"
)

type Showtime struct {
	Id              string          `json:"id"`
	MovieId         string          `json:"movieId"`
	MovieTitle      string          `json:"movieTitle"`
	MoviePosterUrl  string          `json:"moviePosterUrl,omitempty"`
	TheaterId       string          `json:"theaterId"`
	TheaterName     string          `json:"theaterName"`
	TheaterLocation string          `json:"theaterLocation,omitempty"`
	Screen          string          `json:"screen"`
	StartsAt        time.Time       `json:"startsAt"`
	TicketPrice     decimal.Decimal `json:"ticketPrice"`
}

type Seat struct {
	Id     string          `json:"id"`
	Row    string          `json:"row"`
	Number int             `json:"number"`
	Label  string          `json:"label"`
	Type   SeatType        `json:"type"`
	Price  decimal.Decimal `json:"price"`
	State  SeatState       `json:"state"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type Notice struct {
	Kind    string    `json:"kind"`
	SeatId  string    `json:"seatId,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type SeatMapResponse struct {
	Showtime         Showtime        `json:"showtime"`
	SeatRows         []SeatRow       `json:"seatRows"`
	SelectedSeatIds  []string        `json:"selectedSeatIds"`
	SelectedSeats    []string        `json:"selectedSeats"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	MaxSeats         int             `json:"maxSeats"`
	AvailableSeats   int             `json:"availableSeats"`
	HoldExpiresAt    *time.Time      `json:"holdExpiresAt,omitempty"`
	RemainingSeconds int             `json:"remainingSeconds"`
	Notices          []Notice        `json:"notices"`
}

type ToggleSeatResponse struct {
	SeatId   string          `json:"seatId"`
	Selected bool            `json:"selected"`
	Ignored  bool            `json:"ignored,omitempty"`
	SeatMap  SeatMapResponse `json:"seatMap"`
}

type ExtendHoldResponse struct {
	HoldExpiresAt    time.Time `json:"holdExpiresAt"`
	RemainingSeconds int       `json:"remainingSeconds"`
}

type CostBreakdown struct {
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	ConvenienceFee decimal.Decimal `json:"convenienceFee"`
	Gst            decimal.Decimal `json:"gst"`
	Total          decimal.Decimal `json:"total"`
}

type BookingDraft struct {
	ShowtimeId      string          `json:"showtimeId"`
	StartsAt        time.Time       `json:"startsAt"`
	MovieTitle      string          `json:"movieTitle"`
	MoviePosterUrl  string          `json:"moviePosterUrl,omitempty"`
	TheaterName     string          `json:"theaterName"`
	TheaterLocation string          `json:"theaterLocation,omitempty"`
	Screen          string          `json:"screen"`
	SeatIds         []string        `json:"seatIds"`
	Seats           []string        `json:"seats"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}

type BookingDraftResponse struct {
	Draft         BookingDraft  `json:"draft"`
	CostBreakdown CostBreakdown `json:"costBreakdown"`
}

type CheckoutRequest struct {
	CustomerName  string `json:"customerName" validate:"required,min=2,max=100"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CustomerPhone string `json:"customerPhone" validate:"required,phone"`
	PaymentMethod string `json:"paymentMethod" validate:"required,payment_method"`
}

type BookingConfirmationResponse struct {
	BookingId       string          `json:"bookingId"`
	TicketNumber    string          `json:"ticketNumber"`
	QrCode          string          `json:"qrCode,omitempty"`
	Seats           []string        `json:"seats"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	MovieTitle      string          `json:"movieTitle"`
	MoviePosterUrl  string          `json:"moviePosterUrl,omitempty"`
	TheaterName     string          `json:"theaterName"`
	TheaterLocation string          `json:"theaterLocation,omitempty"`
	Screen          string          `json:"screen"`
	StartsAt        time.Time       `json:"startsAt"`
}

type SeatMapEventType string

const (
	SeatMapEventView      SeatMapEventType = "seat_map"
	SeatMapEventCountdown SeatMapEventType = "countdown"
	SeatMapEventNotice    SeatMapEventType = "notice"
)

// SeatMapEvent is one message of the seat map WebSocket stream.
type SeatMapEvent struct {
	Type             SeatMapEventType `json:"type"`
	SeatMap          *SeatMapResponse `json:"seatMap,omitempty"`
	Notice           *Notice          `json:"notice,omitempty"`
	RemainingSeconds *int             `json:"remainingSeconds,omitempty"`
}
