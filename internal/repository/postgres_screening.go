package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popcornpalace/booking-api/internal/domain"
)

type PostgresScreeningRepository struct {
	db *pgxpool.Pool
}

func NewPostgresScreeningRepository(db *pgxpool.Pool) *PostgresScreeningRepository {
	return &PostgresScreeningRepository{
		db: db,
	}
}

func (p *PostgresScreeningRepository) Create(ctx context.Context, screening *domain.Screening) error {
	movie, err := json.Marshal(screening.Movie)
	if err != nil {
		return fmt.Errorf("failed to encode movie document: %w", err)
	}

	query := `
		INSERT INTO screenings (id, tmdb_id, movie, date, slug)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5)
	`

	_, err = p.db.Exec(ctx, query, screening.ID, screening.TmdbID, movie, screening.Date, screening.Slug)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrScreeningExists
		}

		return err
	}

	return nil
}

func (p *PostgresScreeningRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Screening, error) {
	query := `
		SELECT id, COALESCE(tmdb_id, 0), movie, date, slug
		FROM screenings
		WHERE id = $1
	`

	var screening domain.Screening

	err := p.db.QueryRow(ctx, query, id).Scan(
		&screening.ID,
		&screening.TmdbID,
		&screening.Movie,
		&screening.Date,
		&screening.Slug,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &screening, nil
}

func (p *PostgresScreeningRepository) GetAll(
	ctx context.Context,
	filters domain.ScreeningFilters) ([]domain.ScreeningSummary, error) {

	query := `
		SELECT id, slug, date, movie->>'title', COALESCE(movie->>'poster', '')
		FROM screenings
		WHERE ($1 = '' OR movie->'genres' ? $1)
			AND ($2::date IS NULL OR (date AT TIME ZONE 'UTC')::date = $2::date)
		ORDER BY date, id
	`

	rows, err := p.db.Query(ctx, query, filters.Genre, filters.Day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	screenings := make([]domain.ScreeningSummary, 0)

	for rows.Next() {
		var s domain.ScreeningSummary

		err := rows.Scan(&s.ID, &s.Slug, &s.Date, &s.MovieTitle, &s.MoviePoster)
		if err != nil {
			return nil, err
		}

		screenings = append(screenings, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return screenings, nil
}

func (p *PostgresScreeningRepository) GetGenres(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT genre
		FROM screenings, jsonb_array_elements_text(movie->'genres') AS genre
		ORDER BY genre
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *PostgresScreeningRepository) GetDates(ctx context.Context) ([]time.Time, error) {
	query := `
		SELECT DISTINCT (date AT TIME ZONE 'UTC')::date AS day
		FROM screenings
		ORDER BY day
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

func (p *PostgresScreeningRepository) ExistsByTmdbId(ctx context.Context, tmdbID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM screenings WHERE tmdb_id = $1)`

	var exists bool

	err := p.db.QueryRow(ctx, query, tmdbID).Scan(&exists)

	return exists, err
}
