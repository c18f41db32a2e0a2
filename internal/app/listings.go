package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cinefilo/booking-flow/api"
	"github.com/cinefilo/booking-flow/internal/domain"
)

const (
	catalogMoviesKey  = "catalog:movies"
	catalogCinemasKey = "catalog:cinemas"
)

// CatalogCache keeps the movie and cinema listings warm in Redis so the
// browse pages never block on the upstream. A refresh loop re-fetches on
// a fixed cadence; reads fall back to the upstream only on a cold cache.
type CatalogCache struct {
	redis    redis.UniversalClient
	listings domain.ListingGateway
	logger   *slog.Logger
	ttl      time.Duration
}

func NewCatalogCache(
	redisClient redis.UniversalClient,
	listings domain.ListingGateway,
	logger *slog.Logger,
	ttl time.Duration) *CatalogCache {

	return &CatalogCache{
		redis:    redisClient,
		listings: listings,
		logger:   logger,
		ttl:      ttl,
	}
}

// RefreshLoop re-fetches both listings on a ticker until the context is
// cancelled. A failed refresh keeps the previous cache entry alive; the
// TTL outlasting the refresh interval covers upstream hiccups.
func (c *CatalogCache) RefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

func (c *CatalogCache) refresh(ctx context.Context) {
	if _, err := c.fetchMovies(ctx); err != nil {
		c.logger.Error("failed to refresh movie listings", "error", err)
	}

	if _, err := c.fetchCinemas(ctx); err != nil {
		c.logger.Error("failed to refresh cinema listings", "error", err)
	}
}

func (c *CatalogCache) Movies(ctx context.Context) ([]domain.MovieSummary, error) {
	var movies []domain.MovieSummary

	ok, err := c.readCached(ctx, catalogMoviesKey, &movies)
	if err != nil {
		return nil, err
	}
	if ok {
		return movies, nil
	}

	return c.fetchMovies(ctx)
}

func (c *CatalogCache) Cinemas(ctx context.Context) ([]domain.CinemaSummary, error) {
	var cinemas []domain.CinemaSummary

	ok, err := c.readCached(ctx, catalogCinemasKey, &cinemas)
	if err != nil {
		return nil, err
	}
	if ok {
		return cinemas, nil
	}

	return c.fetchCinemas(ctx)
}

func (c *CatalogCache) fetchMovies(ctx context.Context) ([]domain.MovieSummary, error) {
	movies, err := c.listings.ListMovies(ctx)
	if err != nil {
		return nil, err
	}

	c.writeCached(ctx, catalogMoviesKey, movies)

	return movies, nil
}

func (c *CatalogCache) fetchCinemas(ctx context.Context) ([]domain.CinemaSummary, error) {
	cinemas, err := c.listings.ListCinemas(ctx)
	if err != nil {
		return nil, err
	}

	c.writeCached(ctx, catalogCinemasKey, cinemas)

	return cinemas, nil
}

func (c *CatalogCache) readCached(ctx context.Context, key string, dst any) (bool, error) {
	cached, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	err = json.Unmarshal(cached, dst)
	if err != nil {
		// A corrupt cache entry reads as a miss.
		c.logger.Error("failed to unmarshal cached listing", "key", key, "error", err)
		return false, nil
	}

	return true, nil
}

func (c *CatalogCache) writeCached(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("failed to marshal listing for cache", "key", key, "error", err)
		return
	}

	err = c.redis.Set(ctx, key, data, c.ttl).Err()
	if err != nil {
		c.logger.Error("failed to cache listing", "key", key, "error", err)
	}
}

func (app *Application) GetMoviesHandler(w http.ResponseWriter, r *http.Request) {
	movies, err := app.catalog.Movies(r.Context())
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	resp := api.MovieListResponse{
		Movies: make([]api.MovieSummary, len(movies)),
	}
	for i, movie := range movies {
		resp.Movies[i] = toApiMovieSummary(movie)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetCinemasHandler(w http.ResponseWriter, r *http.Request) {
	cinemas, err := app.catalog.Cinemas(r.Context())
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	resp := api.CinemaListResponse{
		Cinemas: make([]api.CinemaSummary, len(cinemas)),
	}
	for i, cinema := range cinemas {
		resp.Cinemas[i] = api.CinemaSummary{
			Id:       cinema.ID,
			Name:     cinema.Name,
			Location: cinema.Location,
			Rooms:    cinema.Rooms,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiMovieSummary(movie domain.MovieSummary) api.MovieSummary {
	summary := api.MovieSummary{
		Id:        movie.ID,
		Title:     movie.Title,
		Genre:     movie.Genre,
		AgeRating: movie.AgeRating,
		PosterUrl: movie.PosterUrl,
	}

	if !movie.ReleaseDate.IsZero() {
		summary.ReleaseDate = movie.ReleaseDate.Format("2006-01-02")
	}

	return summary
}
