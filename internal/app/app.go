package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popcornpalace/booking-api/api"
	"github.com/popcornpalace/booking-api/internal/availability"
	"github.com/popcornpalace/booking-api/internal/catalog"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/popcornpalace/booking-api/internal/mailer"
	"github.com/popcornpalace/booking-api/internal/message"
	"github.com/popcornpalace/booking-api/internal/payment"
	"github.com/popcornpalace/booking-api/internal/repository"
	"github.com/popcornpalace/booking-api/internal/tmdb"
	appvalidator "github.com/popcornpalace/booking-api/internal/validator"
	"github.com/popcornpalace/booking-api/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"golang.org/x/sync/errgroup"
)

var (
	version = vcs.Version()
)

// ScreeningCatalog creates screenings from the movie metadata provider.
type ScreeningCatalog interface {
	AddScreening(ctx context.Context, tmdbID int, date time.Time) (*domain.Screening, error)
	Populate(ctx context.Context, limit int) (*catalog.PopulateResult, error)
}

type Application struct {
	config         Config
	logger         *slog.Logger
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	metrics        *appMetrics
	now            func() time.Time

	userRepo      domain.UserRepository
	screeningRepo domain.ScreeningRepository
	bookingRepo   domain.BookingRepository

	resolver        *availability.Resolver
	catalog         ScreeningCatalog
	paymentProvider domain.PaymentProvider
	eventBus        message.Publisher

	openapiJSON []byte
}

// Run parses the configuration, wires every dependency and serves HTTP until
// SIGINT or SIGTERM.
func Run() error {
	if err := LoadEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	cfg.RegisterFlags(flag.CommandLine)

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	bootstrap := &Application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}

	shutdownTelemetry, err := bootstrap.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	logger := NewLogger(cfg)

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	wmLogger := watermill.NewSlogLogger(logger)

	publisher, err := message.NewRedisPublisher(redisClient, wmLogger)
	if err != nil {
		return err
	}

	eventBus, err := message.NewEventBus(publisher, wmLogger)
	if err != nil {
		return err
	}

	msgRouter, err := message.NewRouter(message.RouterDeps{
		Logger:      wmLogger,
		RedisClient: redisClient,
		Mailer:      mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
	})
	if err != nil {
		return err
	}

	screeningRepo := repository.NewPostgresScreeningRepository(db)
	tmdbClient := tmdb.NewClient(nil, cfg.TMDB.ApiKey, tmdb.WithLanguage(cfg.TMDB.Language))

	app := NewApp(cfg, logger, Dependencies{
		SessionManager:  NewSessionManager(redisClient),
		UserRepo:        repository.NewPostgresUserRepository(db),
		ScreeningRepo:   screeningRepo,
		BookingRepo:     repository.NewPostgresBookingRepository(db),
		Catalog:         catalog.New(tmdbClient, screeningRepo, logger),
		PaymentProvider: payment.NewStripePaymentProvider(cfg.PriceIDs()),
		EventBus:        eventBus,
	})

	if err := app.loadOpenAPI(); err != nil {
		return err
	}

	return app.serve(msgRouter)
}

// Dependencies are the collaborators of an Application. Now defaults to the
// wall clock.
type Dependencies struct {
	SessionManager  *scs.SessionManager
	UserRepo        domain.UserRepository
	ScreeningRepo   domain.ScreeningRepository
	BookingRepo     domain.BookingRepository
	Catalog         ScreeningCatalog
	PaymentProvider domain.PaymentProvider
	EventBus        message.Publisher
	Now             func() time.Time
}

func NewApp(cfg Config, logger *slog.Logger, deps Dependencies) *Application {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Application{
		config:          cfg,
		logger:          logger,
		validator:       appvalidator.NewValidator(),
		sessionManager:  deps.SessionManager,
		metrics:         newAppMetrics(),
		now:             now,
		userRepo:        deps.UserRepo,
		screeningRepo:   deps.ScreeningRepo,
		bookingRepo:     deps.BookingRepo,
		resolver:        availability.NewResolver(deps.BookingRepo, availability.WithHoldWindow(cfg.HoldWindow), availability.WithClock(now)),
		catalog:         deps.Catalog,
		paymentProvider: deps.PaymentProvider,
		eventBus:        deps.EventBus,
	}
}

func NewLogger(cfg Config) *slog.Logger {
	stdout := slog.NewTextHandler(os.Stdout, nil)
	if cfg.OtelCollectorUrl == "" {
		return slog.New(stdout)
	}

	return slog.New(NewMultiHandler(stdout, newOtelLogHandler()))
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Lifetime = 7 * 24 * time.Hour
	sessionManager.Cookie.Name = "session_id"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Persist = false

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Url,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}
	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.Dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) loadOpenAPI() error {
	doc, err := api.GetSwagger()
	if err != nil {
		return err
	}

	app.openapiJSON, err = doc.MarshalJSON()
	return err
}

// serve runs the event router and the HTTP server side by side. The server
// only starts accepting requests once the router is subscribed.
func (app *Application) serve(msgRouter *wmmessage.Router) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running message router: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-msgRouter.Running():
		case <-runCtx.Done():
			return nil
		}

		app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		app.logger.Info("shutting down server", "addr", srv.Addr)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return msgRouter.Close()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
