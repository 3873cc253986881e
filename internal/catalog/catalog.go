// Package catalog builds screenings from the movie metadata provider. It is
// shared by the HTTP API and the admin CLI.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/popcornpalace/booking-api/internal/tmdb"
	"golang.org/x/sync/errgroup"
)

const (
	imageBaseURL   = "https://image.tmdb.org/t/p/"
	youtubeBaseURL = "https://www.youtube.com/watch?v="

	castingSize = 5

	// DefaultPopulateLimit is how many discovered movies populate considers.
	DefaultPopulateLimit = 8
)

type MovieSource interface {
	Discover(ctx context.Context) ([]tmdb.MovieRef, error)
	GetMovieInfo(ctx context.Context, movieID int) (*tmdb.MovieInfo, error)
	GetCredits(ctx context.Context, movieID int) (*tmdb.Credits, error)
	GetVideos(ctx context.Context, movieID int) (*tmdb.Videos, error)
}

type Catalog struct {
	source     MovieSource
	screenings domain.ScreeningRepository
	logger     *slog.Logger
	now        func() time.Time
}

func New(source MovieSource, screenings domain.ScreeningRepository, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	return &Catalog{
		source:     source,
		screenings: screenings,
		logger:     logger,
		now:        time.Now,
	}
}

type PopulateResult struct {
	Created int
	Skipped int
}

// AddScreening fetches the movie from the provider and stores a new screening
// of it at the given date.
func (c *Catalog) AddScreening(ctx context.Context, tmdbID int, date time.Time) (*domain.Screening, error) {
	movie, err := c.FetchMovie(ctx, tmdbID)
	if err != nil {
		return nil, err
	}

	screening := domain.NewScreening(tmdbID, *movie, date.UTC())
	if err := c.screenings.Create(ctx, screening); err != nil {
		return nil, err
	}

	c.logger.Info("screening created", "screening_id", screening.ID, "tmdb_id", tmdbID, "title", movie.Title)

	return screening, nil
}

// FetchMovie retrieves details, credits and videos concurrently and merges
// them into a movie document.
func (c *Catalog) FetchMovie(ctx context.Context, tmdbID int) (*domain.Movie, error) {
	var (
		info    *tmdb.MovieInfo
		credits *tmdb.Credits
		videos  *tmdb.Videos
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		info, err = c.source.GetMovieInfo(gctx, tmdbID)
		if err != nil {
			return fmt.Errorf("fetching movie info: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		credits, err = c.source.GetCredits(gctx, tmdbID)
		if err != nil {
			return fmt.Errorf("fetching credits: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		videos, err = c.source.GetVideos(gctx, tmdbID)
		if err != nil {
			return fmt.Errorf("fetching videos: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if tmdb.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %d", domain.ErrMovieNotFound, tmdbID)
		}
		return nil, err
	}

	return buildMovie(info, credits, videos), nil
}

// Populate creates a screening dated now for each of the first limit
// discovered movies that is not already scheduled. Failures are logged and
// counted as skipped so one bad movie does not stop the run.
func (c *Catalog) Populate(ctx context.Context, limit int) (*PopulateResult, error) {
	if limit <= 0 {
		limit = DefaultPopulateLimit
	}

	refs, err := c.source.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering movies: %w", err)
	}

	if len(refs) > limit {
		refs = refs[:limit]
	}

	result := &PopulateResult{}
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		exists, err := c.screenings.ExistsByTmdbId(ctx, ref.ID)
		if err != nil {
			return result, fmt.Errorf("checking movie %d: %w", ref.ID, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		_, err = c.AddScreening(ctx, ref.ID, c.now())
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, domain.ErrScreeningExists):
			result.Skipped++
		default:
			c.logger.Warn("skipping movie", "tmdb_id", ref.ID, "title", ref.Title, "error", err)
			result.Skipped++
		}
	}

	return result, nil
}

func buildMovie(info *tmdb.MovieInfo, credits *tmdb.Credits, videos *tmdb.Videos) *domain.Movie {
	movie := &domain.Movie{
		Title:    info.Title,
		Director: make([]string, 0),
		Casting:  make([]string, 0, castingSize),
		Genres:   make([]string, 0, len(info.Genres)),
		Synopsis: info.Overview,
		Poster:   imageURL("w300", info.PosterPath),
		Backdrop: imageURL("w1280", info.BackdropPath),
		Trailer:  trailerURL(videos),
		Score:    info.VoteAverage,
		Length:   info.Runtime,
	}

	for _, g := range info.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}

	for _, member := range credits.Crew {
		if member.Job == "Director" {
			movie.Director = append(movie.Director, member.Name)
		}
	}

	for i, member := range credits.Cast {
		if i == castingSize {
			break
		}
		movie.Casting = append(movie.Casting, member.Name)
	}

	if release, err := time.Parse(time.DateOnly, info.ReleaseDate); err == nil {
		movie.Release = &release
	}

	return movie
}

func imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

func trailerURL(videos *tmdb.Videos) string {
	for _, v := range videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return youtubeBaseURL + v.Key
		}
	}
	return ""
}
