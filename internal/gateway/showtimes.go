package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cinefilo/booking-flow/internal/domain"
	"github.com/shopspring/decimal"
)

type seatInfoPayload struct {
	Available bool `json:"available"`
}

type showtimePayload struct {
	ID    int `json:"id"`
	Movie struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		AgeRating   string `json:"age_rating"`
		Poster      string `json:"poster"`
		GenreDetail struct {
			Name string `json:"name"`
		} `json:"genre_detail"`
	} `json:"movie"`
	Room struct {
		ID         int    `json:"id"`
		Name       string `json:"name"`
		Capacity   int    `json:"capacity"`
		CinemaID   int    `json:"cinema"`
		CinemaName string `json:"cinema_name"`
	} `json:"room"`
	ShowDate       string                     `json:"show_date"`
	ShowTime       string                     `json:"show_time"`
	TicketPrice    decimal.Decimal            `json:"ticket_price"`
	IsActive       bool                       `json:"is_active"`
	AvailableSeats int                        `json:"available_seats"`
	SeatsData      map[string]seatInfoPayload `json:"seats_data"`
}

// GetShowtime fetches full showtime details, including the sparse seat
// availability snapshot.
func (c *Client) GetShowtime(ctx context.Context, showtimeID int) (*domain.Showtime, error) {
	var payload showtimePayload

	path := fmt.Sprintf("/showtimes/%d/?detail=full", showtimeID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}

	return toShowtime(payload)
}

// GetSeatAvailability re-fetches the snapshot fresh. Same endpoint as
// GetShowtime; only the seat data is kept.
func (c *Client) GetSeatAvailability(ctx context.Context, showtimeID int) (domain.SeatSnapshot, error) {
	var payload showtimePayload

	path := fmt.Sprintf("/showtimes/%d/?detail=full", showtimeID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}

	return toSeatSnapshot(payload.SeatsData), nil
}

func toShowtime(payload showtimePayload) (*domain.Showtime, error) {
	showDate, err := time.Parse("2006-01-02", payload.ShowDate)
	if err != nil {
		return nil, fmt.Errorf("parsing show date %q: %w", payload.ShowDate, err)
	}

	return &domain.Showtime{
		ID: payload.ID,
		Movie: domain.MovieInfo{
			ID:        payload.Movie.ID,
			Title:     payload.Movie.Title,
			Genre:     payload.Movie.GenreDetail.Name,
			AgeRating: payload.Movie.AgeRating,
			PosterUrl: payload.Movie.Poster,
		},
		Room: domain.Room{
			ID:       payload.Room.ID,
			Name:     payload.Room.Name,
			Capacity: payload.Room.Capacity,
			Cinema: domain.Cinema{
				ID:   payload.Room.CinemaID,
				Name: payload.Room.CinemaName,
			},
		},
		ShowDate:    showDate,
		ShowTime:    payload.ShowTime,
		TicketPrice: payload.TicketPrice,
		Active:      payload.IsActive,
		Seats:       toSeatSnapshot(payload.SeatsData),
	}, nil
}

func toSeatSnapshot(seatsData map[string]seatInfoPayload) domain.SeatSnapshot {
	snapshot := make(domain.SeatSnapshot, len(seatsData))
	for id, info := range seatsData {
		snapshot[id] = info.Available
	}

	return snapshot
}
