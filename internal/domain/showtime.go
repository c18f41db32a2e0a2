package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Cinema struct {
	ID       int
	Name     string
	Location string
}

type Room struct {
	ID       int
	Name     string
	Capacity int
	Cinema   Cinema
}

type MovieInfo struct {
	ID        int
	Title     string
	Genre     string
	AgeRating string
	PosterUrl string
}

// SeatSnapshot is the sparse availability map reported by the upstream
// ticketing API: seat id ("C7") to availability as of one fetch.
type SeatSnapshot map[string]bool

// Showtime is immutable for the duration of a booking session, except
// that Seats may go stale as other customers book.
type Showtime struct {
	ID          int
	Movie       MovieInfo
	Room        Room
	ShowDate    time.Time
	ShowTime    string
	TicketPrice decimal.Decimal
	Active      bool
	Seats       SeatSnapshot
}

type ShowtimeGateway interface {
	GetShowtime(ctx context.Context, showtimeID int) (*Showtime, error)
	GetSeatAvailability(ctx context.Context, showtimeID int) (SeatSnapshot, error)
}
