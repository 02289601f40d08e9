package mocks

import (
	"context"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatBackend struct {
	mock.Mock
	domain.SeatBackend
}

func (m *MockSeatBackend) FetchSeats(ctx context.Context, showtimeID string) ([]domain.Seat, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatBackend) InitializeSeats(ctx context.Context, showtimeID string) error {
	args := m.Called(ctx, showtimeID)
	return args.Error(0)
}

func (m *MockSeatBackend) HoldSeats(ctx context.Context, showtimeID string, seatIDs []string, sessionID string) error {
	args := m.Called(ctx, showtimeID, seatIDs, sessionID)
	return args.Error(0)
}

func (m *MockSeatBackend) ReleaseSeats(ctx context.Context, showtimeID string, seatIDs []string) error {
	args := m.Called(ctx, showtimeID, seatIDs)
	return args.Error(0)
}
