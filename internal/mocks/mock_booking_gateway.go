package mocks

import (
	"context"

	"github.com/cinefilo/booking-flow/internal/domain"
)

type MockBookingGateway struct {
	CreateBookingFunc func(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error)
	GetBookingFunc    func(ctx context.Context, reference string) (*domain.Booking, error)
}

func (m *MockBookingGateway) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	return m.CreateBookingFunc(ctx, req)
}

func (m *MockBookingGateway) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	return m.GetBookingFunc(ctx, reference)
}
