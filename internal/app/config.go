package app

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/popcornpalace/booking-api/internal/availability"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/popcornpalace/booking-api/internal/payment"
)

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	HoldWindow       time.Duration

	DB struct {
		Dsn          string
		MaxOpenConns int
		MaxIdleTime  time.Duration
	}
	Redis struct {
		Url          string
		MaxOpenConns int
		MaxIdleConns int
		MaxIdleTime  time.Duration
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		Sender   string
	}
	Stripe struct {
		SecretKey     string
		WebhookSecret string
		PriceNormal   string
		PriceStudent  string
		PriceReduced  string
	}
	TMDB struct {
		ApiKey   string
		Language string
	}
}

// LoadEnv reads a local .env file if there is one. Variables already set in
// the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RegisterFlags binds every configuration value to a flag. Defaults
// come from the environment so secrets can live in .env.
func (cfg *Config) RegisterFlags(flags *flag.FlagSet) {
	flags.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flags.StringVar(&cfg.Env, "env", envString("APP_ENV", "dev"), "Environment (dev|staging|prod)")
	flags.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", os.Getenv("OTEL_COLLECTOR_URL"), "OpenTelemetry collector gRPC endpoint")
	flags.DurationVar(&cfg.HoldWindow, "hold-window", availability.DefaultHoldWindow, "How long an unpaid booking keeps its seats")

	flags.StringVar(&cfg.DB.Dsn, "db-dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN")
	flags.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flags.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flags.StringVar(&cfg.Redis.Url, "redis-url", envString("REDIS_URL", "localhost:6379"), "Redis address")
	flags.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flags.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flags.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flags.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flags.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flags.StringVar(&cfg.SMTP.Username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flags.StringVar(&cfg.SMTP.Password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flags.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Popcorn Palace <no-reply@popcornpalace.test>"), "SMTP sender")

	flags.StringVar(&cfg.Stripe.SecretKey, "stripe-key", os.Getenv("STRIPE_API_KEY"), "Stripe secret key")
	flags.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", os.Getenv("STRIPE_WEBHOOK_SECRET"), "Stripe webhook secret")
	flags.StringVar(&cfg.Stripe.PriceNormal, "stripe-price-normal", os.Getenv("STRIPE_PRICE_NORMAL"), "Stripe price id of the Normal rate")
	flags.StringVar(&cfg.Stripe.PriceStudent, "stripe-price-student", os.Getenv("STRIPE_PRICE_STUDENT"), "Stripe price id of the Étudiant rate")
	flags.StringVar(&cfg.Stripe.PriceReduced, "stripe-price-reduced", os.Getenv("STRIPE_PRICE_REDUCED"), "Stripe price id of the Réduit rate")

	flags.StringVar(&cfg.TMDB.ApiKey, "tmdb-api-key", os.Getenv("TMDB_API_KEY"), "TMDB read access token")
	flags.StringVar(&cfg.TMDB.Language, "tmdb-language", envString("TMDB_LANGUAGE", "fr-FR"), "Language of movie metadata")
}

// PriceIDs returns the configured Stripe prices. Rates left empty cannot be
// charged.
func (cfg *Config) PriceIDs() payment.PriceIDs {
	prices := payment.PriceIDs{}

	for rate, id := range map[domain.Rate]string{
		domain.RateNormal:  cfg.Stripe.PriceNormal,
		domain.RateStudent: cfg.Stripe.PriceStudent,
		domain.RateReduced: cfg.Stripe.PriceReduced,
	} {
		if id != "" {
			prices[rate] = id
		}
	}

	return prices
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
