package integration_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popcornpalace/booking-api/internal/app"
	"github.com/popcornpalace/booking-api/internal/catalog"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/popcornpalace/booking-api/internal/mailer"
	"github.com/popcornpalace/booking-api/internal/message"
	"github.com/popcornpalace/booking-api/internal/repository"
	"github.com/popcornpalace/booking-api/internal/tmdb"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
)

type TestApp struct {
	App      *app.Application
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Mailer   *mailer.MockMailer
	Payments *fakePaymentProvider
	TMDB     *httptest.Server

	router     *wmmessage.Router
	stopRouter context.CancelFunc
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	wmLogger := watermill.NewSlogLogger(logger)
	mockMailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	publisher, err := message.NewRedisPublisher(redisClient, wmLogger)
	if err != nil {
		return nil, err
	}

	eventBus, err := message.NewEventBus(publisher, wmLogger)
	if err != nil {
		return nil, err
	}

	router, err := message.NewRouter(message.RouterDeps{
		Logger:      wmLogger,
		RedisClient: redisClient,
		Mailer:      mockMailer,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := router.Run(ctx); err != nil {
			logger.Error("message router stopped", "error", err)
		}
	}()
	<-router.Running()

	tmdbServer := newFakeTMDB()
	screeningRepo := repository.NewPostgresScreeningRepository(db)
	tmdbClient := tmdb.NewClient(tmdbServer.Client(), "test-token", tmdb.WithBaseURL(tmdbServer.URL))
	payments := newFakePaymentProvider()

	application := app.NewApp(cfg, logger, app.Dependencies{
		SessionManager:  app.NewSessionManager(redisClient),
		UserRepo:        repository.NewPostgresUserRepository(db),
		ScreeningRepo:   screeningRepo,
		BookingRepo:     repository.NewPostgresBookingRepository(db),
		Catalog:         catalog.New(tmdbClient, screeningRepo, logger),
		PaymentProvider: payments,
		EventBus:        eventBus,
	})

	return &TestApp{
		App:        application,
		DB:         db,
		Redis:      redisClient,
		Mailer:     mockMailer,
		Payments:   payments,
		TMDB:       tmdbServer,
		router:     router,
		stopRouter: cancel,
	}, nil
}

func (a *TestApp) Close() {
	a.stopRouter()
	_ = a.router.Close()
	a.TMDB.Close()
	_ = a.Redis.Close()
	a.DB.Close()
}

// fakePaymentProvider hands out checkout sessions and reports them paid once
// the test says so.
type fakePaymentProvider struct {
	mu   sync.Mutex
	paid map[string]bool
}

func newFakePaymentProvider() *fakePaymentProvider {
	return &fakePaymentProvider{paid: make(map[string]bool)}
}

func (p *fakePaymentProvider) CreateCheckoutSession(req domain.CheckoutRequest) (*stripe.CheckoutSession, error) {
	id := "cs_test_" + req.Booking.ID.String()

	return &stripe.CheckoutSession{
		ID:  id,
		URL: "https://checkout.stripe.test/" + id,
	}, nil
}

func (p *fakePaymentProvider) IsSessionPaid(checkoutSessionID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.paid[checkoutSessionID], nil
}

func (p *fakePaymentProvider) MarkPaid(checkoutSessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paid[checkoutSessionID] = true
}

// newFakeTMDB serves a handful of popular movies. Movie 404 is unknown.
func newFakeTMDB() *httptest.Server {
	movies := map[int]string{
		TestMovieID: TestMovieTitle,
		558449:      "Gladiator II",
		402431:      "Wicked",
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /discover/movie", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"page":1,"results":[{"id":%d,"title":%q},{"id":558449,"title":"Gladiator II"},{"id":402431,"title":"Wicked"}]}`,
			TestMovieID, TestMovieTitle)
	})

	mux.HandleFunc("GET /movie/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))

		title, ok := movies[id]
		if !ok {
			http.Error(w, `{"status_code":34,"status_message":"The resource you requested could not be found."}`, http.StatusNotFound)
			return
		}

		fmt.Fprintf(w, `{
			"id": %d,
			"title": %q,
			"overview": "Un film.",
			"genres": [{"id": 16, "name": "Animation"}, {"id": 12, "name": "Aventure"}],
			"poster_path": "/poster-%d.jpg",
			"backdrop_path": "/backdrop-%d.jpg",
			"vote_average": 7.1,
			"runtime": 100,
			"release_date": "2024-11-27"
		}`, id, title, id, id)
	})

	mux.HandleFunc("GET /movie/{id}/credits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"cast": [{"name": "Auliʻi Cravalho", "order": 0}, {"name": "Dwayne Johnson", "order": 1}],
			"crew": [{"name": "David G. Derrick Jr.", "job": "Director"}, {"name": "Mark Mancina", "job": "Original Music Composer"}]
		}`)
	})

	mux.HandleFunc("GET /movie/{id}/videos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"key": "abc123", "site": "YouTube", "type": "Trailer"}]}`)
	})

	return httptest.NewServer(mux)
}
