package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime/types"
	"github.com/popcornpalace/booking-api/api"
	"github.com/popcornpalace/booking-api/internal/catalog"
	"github.com/popcornpalace/booking-api/internal/domain"
)

func (app *Application) GetScreenings(w http.ResponseWriter, r *http.Request) {
	var filters domain.ScreeningFilters

	query := r.URL.Query()
	filters.Genre = query.Get("genre")

	if date := query.Get("date"); date != "" {
		day, err := time.Parse(time.DateOnly, date)
		if err != nil {
			app.fieldValidationResponse(w, r, "date", "must be a date formatted as YYYY-MM-DD")
			return
		}
		filters.Day = &day
	}

	screenings, err := app.screeningRepo.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ScreeningsResponse{
		Screenings: toScreeningSummaries(screenings),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetScreeningGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := app.screeningRepo.GetGenres(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if genres == nil {
		genres = []string{}
	}

	err = app.writeJSON(w, http.StatusOK, api.GenresResponse{Genres: genres}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetScreeningDates(w http.ResponseWriter, r *http.Request) {
	dates, err := app.screeningRepo.GetDates(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.DatesResponse{
		Dates: make([]types.Date, len(dates)),
	}
	for i, d := range dates {
		resp.Dates[i] = types.Date{Time: d}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// GetScreeningById returns the screening with the seats that can no longer be
// booked. If they cannot be computed the whole read fails.
func (app *Application) GetScreeningById(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningId, err := readUUIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid screening ID"))
		return
	}

	screening, err := app.screeningRepo.GetById(r.Context(), screeningId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	bookedSeats, err := app.resolver.UnavailableSeats(r.Context(), screening.ID)
	if err != nil {
		logger.Error("failed to resolve unavailable seats", "screening_id", screening.ID, "error", err)
		app.serverErrorResponse(w, r, err)
		return
	}

	screening.BookedSeats = bookedSeats

	err = app.writeJSON(w, http.StatusOK, toScreeningResponse(screening), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateScreening(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateScreeningRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	screening, err := app.catalog.AddScreening(r.Context(), input.MovieId, input.Date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMovieNotFound):
			app.notFoundResponseWithErr(w, r, domain.ErrMovieNotFound)
		case errors.Is(err, domain.ErrScreeningExists):
			app.editConflictResponseWithErr(w, r, domain.ErrScreeningExists)
		default:
			logger.Error("failed to create screening", "movie_id", input.MovieId, "error", err)
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	screening.BookedSeats = []string{}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/screenings/%s", screening.ID))

	err = app.writeJSON(w, http.StatusCreated, toScreeningResponse(screening), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) PopulateScreenings(w http.ResponseWriter, r *http.Request) {
	result, err := app.catalog.Populate(r.Context(), catalog.DefaultPopulateLimit)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("screenings populated", "created", result.Created, "skipped", result.Skipped)

	resp := api.PopulateScreeningsResponse{
		Created: result.Created,
		Skipped: result.Skipped,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toScreeningResponse(s *domain.Screening) api.ScreeningResponse {
	movie := api.Movie{
		Title:    s.Movie.Title,
		Director: nonNil(s.Movie.Director),
		Casting:  nonNil(s.Movie.Casting),
		Genres:   nonNil(s.Movie.Genres),
		Synopsis: s.Movie.Synopsis,
		Poster:   s.Movie.Poster,
		Backdrop: s.Movie.Backdrop,
		Trailer:  s.Movie.Trailer,
		Score:    s.Movie.Score,
		Length:   s.Movie.Length,
	}

	if s.Movie.Release != nil {
		movie.Release = &types.Date{Time: *s.Movie.Release}
	}

	return api.ScreeningResponse{
		Id:          s.ID,
		Slug:        s.Slug,
		Date:        s.Date,
		Movie:       movie,
		BookedSeats: nonNil(s.BookedSeats),
	}
}

func toScreeningSummaries(screenings []domain.ScreeningSummary) []api.ScreeningSummary {
	summaries := make([]api.ScreeningSummary, len(screenings))

	for i, s := range screenings {
		summaries[i] = api.ScreeningSummary{
			Id:   s.ID,
			Slug: s.Slug,
			Date: s.Date,
			Movie: api.MovieSummary{
				Title:  s.MovieTitle,
				Poster: s.MoviePoster,
			},
		}
	}

	return summaries
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
