package domain

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type SeatType string

const (
	SeatTypeRegular SeatType = "REGULAR"
	SeatTypePremium SeatType = "PREMIUM"
	SeatTypeVIP     SeatType = "VIP"
)

type Seat struct {
	ID         string
	Row        string
	Number     int
	Price      decimal.Decimal
	Type       SeatType
	IsBooked   bool
	IsHeld     bool
	HoldOwner  *string
	HoldExpiry *time.Time
}

func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

// HeldBy reports whether the seat is currently held by the given session and
// can therefore stay in that session's selection.
func (s Seat) HeldBy(sessionID string) bool {
	return s.IsHeld && !s.IsBooked && s.HoldOwner != nil && *s.HoldOwner == sessionID
}

// BlockedFor reports whether the seat is not interactive for the given session.
// A hold without an owner counts as someone else's.
func (s Seat) BlockedFor(sessionID string) bool {
	if s.IsBooked {
		return true
	}

	return s.IsHeld && (s.HoldOwner == nil || *s.HoldOwner != sessionID)
}

type SeatState string

const (
	SeatStateAvailable SeatState = "available"
	SeatStateSelected  SeatState = "selected"
	SeatStateHeld      SeatState = "held"
	SeatStateBooked    SeatState = "booked"
)

// ValidateSeats rejects structurally invalid seat lists returned by the backend.
func ValidateSeats(seats []Seat) error {
	seen := make(map[string]struct{}, len(seats))

	for i, seat := range seats {
		switch {
		case seat.ID == "":
			return fmt.Errorf("%w: seat at index %d has no id", ErrMalformedSeatData, i)
		case seat.Row == "":
			return fmt.Errorf("%w: seat %s has no row", ErrMalformedSeatData, seat.ID)
		case seat.Number < 1:
			return fmt.Errorf("%w: seat %s has invalid number %d", ErrMalformedSeatData, seat.ID, seat.Number)
		case seat.Price.IsNegative():
			return fmt.Errorf("%w: seat %s has negative price", ErrMalformedSeatData, seat.ID)
		}

		if _, ok := seen[seat.ID]; ok {
			return fmt.Errorf("%w: duplicate seat id %s", ErrMalformedSeatData, seat.ID)
		}
		seen[seat.ID] = struct{}{}
	}

	return nil
}

// SortSeats orders seats by row label, then by number within the row.
func SortSeats(seats []Seat) {
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}

		return seats[i].Number < seats[j].Number
	})
}

type SeatBackend interface {
	FetchSeats(ctx context.Context, showtimeID string) ([]Seat, error)
	InitializeSeats(ctx context.Context, showtimeID string) error
	HoldSeats(ctx context.Context, showtimeID string, seatIDs []string, sessionID string) error
	ReleaseSeats(ctx context.Context, showtimeID string, seatIDs []string) error
}
