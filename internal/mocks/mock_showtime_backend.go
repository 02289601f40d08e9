package mocks

import (
	"context"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

type MockShowtimeBackend struct {
	GetShowtimeFunc func(ctx context.Context, showtimeID string) (*domain.Showtime, error)
}

func (m *MockShowtimeBackend) GetShowtime(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	return m.GetShowtimeFunc(ctx, showtimeID)
}

// StaticShowtimes returns a backend that knows exactly the given showtimes.
func StaticShowtimes(showtimes ...domain.Showtime) *MockShowtimeBackend {
	index := make(map[string]domain.Showtime, len(showtimes))
	for _, st := range showtimes {
		index[st.ID] = st
	}

	return &MockShowtimeBackend{
		GetShowtimeFunc: func(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
			st, ok := index[showtimeID]
			if !ok {
				return nil, domain.ErrShowtimeNotFound
			}
			return &st, nil
		},
	}
}
