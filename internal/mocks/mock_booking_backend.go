package mocks

import (
	"context"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingBackend struct {
	mock.Mock
	domain.BookingBackend
}

func (m *MockBookingBackend) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
