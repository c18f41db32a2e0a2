package domain

import (
	"context"
	"time"
)

type MovieSummary struct {
	ID          int
	Title       string
	Genre       string
	AgeRating   string
	PosterUrl   string
	ReleaseDate time.Time
}

type CinemaSummary struct {
	ID       int
	Name     string
	Location string
	Rooms    int
}

// ListingGateway serves the browse pages. Listings are presentational
// glue around the upstream API and carry no booking state.
type ListingGateway interface {
	ListMovies(ctx context.Context) ([]MovieSummary, error)
	ListCinemas(ctx context.Context) ([]CinemaSummary, error)
}
