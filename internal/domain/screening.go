package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Movie is the metadata document embedded in a screening. It is stored as a
// single JSON document next to the screening row.
type Movie struct {
	Title    string     `json:"title"`
	Director []string   `json:"director"`
	Casting  []string   `json:"casting"`
	Genres   []string   `json:"genres"`
	Synopsis string     `json:"synopsis"`
	Poster   string     `json:"poster"`
	Backdrop string     `json:"backdrop"`
	Trailer  string     `json:"trailer"`
	Score    float64    `json:"score"`
	Length   int        `json:"length"`
	Release  *time.Time `json:"release,omitempty"`
}

type Screening struct {
	ID     uuid.UUID
	TmdbID int
	Movie  Movie
	Date   time.Time
	Slug   string

	// BookedSeats is computed on every read and never persisted.
	BookedSeats []string
}

func NewScreening(tmdbID int, movie Movie, date time.Time) *Screening {
	return &Screening{
		ID:     uuid.New(),
		TmdbID: tmdbID,
		Movie:  movie,
		Date:   date,
		Slug:   Slugify(movie.Title),
	}
}

type ScreeningSummary struct {
	ID          uuid.UUID
	Slug        string
	Date        time.Time
	MovieTitle  string
	MoviePoster string
}

type ScreeningFilters struct {
	Genre string
	Day   *time.Time
}

type ScreeningRepository interface {
	Create(ctx context.Context, screening *Screening) error
	GetById(ctx context.Context, id uuid.UUID) (*Screening, error)
	GetAll(ctx context.Context, filters ScreeningFilters) ([]ScreeningSummary, error)
	GetGenres(ctx context.Context) ([]string, error)
	GetDates(ctx context.Context) ([]time.Time, error)
	ExistsByTmdbId(ctx context.Context, tmdbID int) (bool, error)
}

var (
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	slugLigatures  = strings.NewReplacer("œ", "oe", "Œ", "oe", "æ", "ae", "Æ", "ae", "ß", "ss", "&", " et ")
)

// Slugify turns a movie title into a lowercase, URL friendly identifier.
// Accents are stripped and every run of other characters becomes a single dash.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	s, _, err := transform.String(t, slugLigatures.Replace(title))
	if err != nil {
		s = title
	}

	s = slugSeparators.ReplaceAllString(strings.ToLower(s), "-")

	return strings.Trim(s, "-")
}
