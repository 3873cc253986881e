package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/popcornpalace/booking-api/internal/repository"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

var (
	TestScreeningID      = uuid.MustParse("4f0c2d4e-7d5b-4d6e-9c61-0f4f3a2b1c10")
	TestOtherScreeningID = uuid.MustParse("8a1e6f52-3b7c-4c1d-8e2f-5a6b7c8d9e01")
)

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req
}

func jsonBody(t testing.TB, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(data)
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func decode[T any](t testing.TB, res *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

func truncateTables(t testing.TB, db *pgxpool.Pool) {
	t.Helper()

	_, err := db.Exec(context.Background(), `TRUNCATE bookings, screenings, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func seedUser(t testing.TB, app *TestApp, email string, role domain.Role) int {
	t.Helper()

	user := &domain.User{
		FirstName: TestUserFirstName,
		LastName:  TestUserLastName,
		Email:     email,
		Role:      domain.RoleUser,
	}
	require.NoError(t, user.Password.Set(TestUserPassword))

	repo := repository.NewPostgresUserRepository(app.DB)
	require.NoError(t, repo.Create(context.Background(), user))

	if role != domain.RoleUser {
		require.NoError(t, repo.UpdateRole(context.Background(), email, role))
	}

	return user.ID
}

// signIn goes through the real sign in endpoint and returns the session cookie.
func signIn(t testing.TB, app *TestApp, email string) *http.Cookie {
	t.Helper()

	req := prepareRequest(http.MethodPost, "/auth/signin", jsonBody(t, map[string]any{
		"email":    email,
		"password": TestUserPassword,
	}), nil, nil)

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "sign in as %s: %s", email, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}

	t.Fatalf("sign in as %s did not set a session cookie", email)
	return nil
}

func seedScreening(t testing.TB, app *TestApp, id uuid.UUID, tmdbID int, title string, date time.Time) {
	t.Helper()

	release := time.Date(2024, 11, 27, 0, 0, 0, 0, time.UTC)
	screening := &domain.Screening{
		ID:     id,
		TmdbID: tmdbID,
		Movie: domain.Movie{
			Title:    title,
			Director: []string{"David G. Derrick Jr."},
			Casting:  []string{"Auliʻi Cravalho"},
			Genres:   []string{"Animation", "Aventure"},
			Poster:   "https://image.tmdb.org/t/p/w300/poster.jpg",
			Score:    7.1,
			Length:   100,
			Release:  &release,
		},
		Date: date,
		Slug: domain.Slugify(title),
	}

	err := repository.NewPostgresScreeningRepository(app.DB).Create(context.Background(), screening)
	require.NoError(t, err)
}

// seedBooking inserts a booking created age ago.
func seedBooking(t testing.TB, app *TestApp, screeningID uuid.UUID, userID int, seats []string, paid bool, age time.Duration) uuid.UUID {
	t.Helper()

	id := uuid.New()
	tickets := make([]domain.Ticket, len(seats))
	for i := range tickets {
		tickets[i] = domain.Ticket{Rate: domain.RateNormal}
	}

	ticketsJSON, err := json.Marshal(tickets)
	require.NoError(t, err)

	_, err = app.DB.Exec(context.Background(), `
		INSERT INTO bookings (id, screening_id, user_id, tickets, seats, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW() - $7::interval)`,
		id, screeningID, userID, ticketsJSON, seats, paid, fmt.Sprintf("%d milliseconds", age.Milliseconds()))
	require.NoError(t, err)

	return id
}

func serve(app *TestApp, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	return rec
}
