package mocks

import (
	"context"

	"github.com/cinefilo/booking-flow/internal/domain"
)

type MockListingGateway struct {
	ListMoviesFunc  func(ctx context.Context) ([]domain.MovieSummary, error)
	ListCinemasFunc func(ctx context.Context) ([]domain.CinemaSummary, error)
}

func (m *MockListingGateway) ListMovies(ctx context.Context) ([]domain.MovieSummary, error) {
	return m.ListMoviesFunc(ctx)
}

func (m *MockListingGateway) ListCinemas(ctx context.Context) ([]domain.CinemaSummary, error) {
	return m.ListCinemasFunc(ctx)
}
