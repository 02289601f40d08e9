package selection

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/metinatakli/movie-seat-selection/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testShowtimeID = "S1"
	localSession   = "session_local"
	otherSession   = "other-session"
)

var testShowtime = domain.Showtime{
	ID:           testShowtimeID,
	Screen:       "Screen 1",
	ShowDateTime: time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC),
	Movie:        domain.Movie{ID: "m-1", Title: "Dune"},
	Theater:      domain.Theater{ID: "t-1", Name: "Cinex", Location: "Kadikoy"},
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seatsFor builds free seats from labels such as "A1"; the label doubles as id.
func seatsFor(labels ...string) []domain.Seat {
	seats := make([]domain.Seat, len(labels))
	for i, label := range labels {
		number, _ := strconv.Atoi(label[1:])
		seats[i] = domain.Seat{
			ID:     label,
			Row:    label[:1],
			Number: number,
			Price:  decimal.NewFromInt(150),
			Type:   domain.SeatTypeRegular,
		}
	}
	return seats
}

func withHold(seats []domain.Seat, id, owner string) []domain.Seat {
	out := make([]domain.Seat, len(seats))
	copy(out, seats)
	for i := range out {
		if out[i].ID == id {
			o := owner
			out[i].IsHeld = true
			out[i].HoldOwner = &o
		}
	}
	return out
}

// withOwnerlessHold marks id as held without a session, as the backend
// reports holds placed without one.
func withOwnerlessHold(seats []domain.Seat, id string) []domain.Seat {
	out := make([]domain.Seat, len(seats))
	copy(out, seats)
	for i := range out {
		if out[i].ID == id {
			out[i].IsHeld = true
			out[i].HoldOwner = nil
		}
	}
	return out
}

func withBooked(seats []domain.Seat, id string) []domain.Seat {
	out := make([]domain.Seat, len(seats))
	copy(out, seats)
	for i := range out {
		if out[i].ID == id {
			out[i].IsBooked = true
		}
	}
	return out
}

// quietOptions keeps the background loops out of the way so tests drive polls
// and ticks explicitly.
func quietOptions(clock *fakeClock) Options {
	return Options{
		PollInterval: time.Hour,
		TickInterval: time.Hour,
		Now:          clock.Now,
		Logger:       discardLogger(),
	}
}

func newLoadedScreen(t *testing.T, backend *mocks.MockSeatBackend, opts Options, seats []domain.Seat) *Screen {
	t.Helper()

	backend.On("FetchSeats", mock.Anything, testShowtimeID).Return(seats, nil).Once()

	screen := NewScreen(backend, testShowtime, localSession, opts)
	require.NoError(t, screen.Load(context.Background()))

	return screen
}
