package mocks

import (
	"context"

	"github.com/cinefilo/booking-flow/internal/domain"
)

type MockShowtimeGateway struct {
	GetShowtimeFunc         func(ctx context.Context, showtimeID int) (*domain.Showtime, error)
	GetSeatAvailabilityFunc func(ctx context.Context, showtimeID int) (domain.SeatSnapshot, error)
}

func (m *MockShowtimeGateway) GetShowtime(ctx context.Context, showtimeID int) (*domain.Showtime, error) {
	return m.GetShowtimeFunc(ctx, showtimeID)
}

func (m *MockShowtimeGateway) GetSeatAvailability(ctx context.Context, showtimeID int) (domain.SeatSnapshot, error) {
	return m.GetSeatAvailabilityFunc(ctx, showtimeID)
}
