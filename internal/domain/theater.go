package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Movie struct {
	ID        string
	Title     string
	Genre     []string
	Language  string
	Duration  int
	PosterUrl string
}

type Theater struct {
	ID       string
	Name     string
	Location string
}

type Showtime struct {
	ID             string
	MovieID        string
	TheaterID      string
	Screen         string
	ShowDateTime   time.Time
	TicketPrice    decimal.Decimal
	TotalSeats     int
	AvailableSeats int
	Status         string
	Movie          Movie
	Theater        Theater
}

type ShowtimeBackend interface {
	GetShowtime(ctx context.Context, showtimeID string) (*Showtime, error)
}
