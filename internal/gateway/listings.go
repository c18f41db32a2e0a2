package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/cinefilo/booking-flow/internal/domain"
)

type moviePayload struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	AgeRating   string `json:"age_rating"`
	Poster      string `json:"poster"`
	ReleaseDate string `json:"release_date"`
	GenreDetail struct {
		Name string `json:"name"`
	} `json:"genre_detail"`
}

type cinemaPayload struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Rooms    []struct {
		ID int `json:"id"`
	} `json:"rooms"`
}

func (c *Client) ListMovies(ctx context.Context) ([]domain.MovieSummary, error) {
	var payload []moviePayload

	if err := c.do(ctx, http.MethodGet, "/movies/?detail=summary", nil, nil, &payload); err != nil {
		return nil, err
	}

	movies := make([]domain.MovieSummary, len(payload))
	for i, m := range payload {
		released, _ := time.Parse("2006-01-02", m.ReleaseDate)

		movies[i] = domain.MovieSummary{
			ID:          m.ID,
			Title:       m.Title,
			Genre:       m.GenreDetail.Name,
			AgeRating:   m.AgeRating,
			PosterUrl:   m.Poster,
			ReleaseDate: released,
		}
	}

	return movies, nil
}

func (c *Client) ListCinemas(ctx context.Context) ([]domain.CinemaSummary, error) {
	var payload []cinemaPayload

	if err := c.do(ctx, http.MethodGet, "/cinemas/", nil, nil, &payload); err != nil {
		return nil, err
	}

	cinemas := make([]domain.CinemaSummary, len(payload))
	for i, c := range payload {
		cinemas[i] = domain.CinemaSummary{
			ID:       c.ID,
			Name:     c.Name,
			Location: c.Location,
			Rooms:    len(c.Rooms),
		}
	}

	return cinemas, nil
}
