package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/popcornpalace/booking-api/internal/app"
	"github.com/popcornpalace/booking-api/internal/catalog"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/popcornpalace/booking-api/internal/repository"
	"github.com/popcornpalace/booking-api/internal/tmdb"
	"github.com/spf13/cobra"
)

func populateCmd(logger *slog.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Schedule a screening for each currently popular movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(logger, func(c *catalog.Catalog) error {
				result, err := c.Populate(cmd.Context(), limit)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created %d screenings, skipped %d\n", result.Created, result.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", catalog.DefaultPopulateLimit, "number of popular movies to consider")

	return cmd
}

func addScreeningCmd(logger *slog.Logger) *cobra.Command {
	var (
		movieID int
		date    string
	)

	cmd := &cobra.Command{
		Use:   "add-screening",
		Short: "Schedule a screening of a TMDB movie",
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := time.Parse(time.RFC3339, date)
			if err != nil {
				return fmt.Errorf("--date must be an RFC 3339 timestamp: %w", err)
			}

			if !when.After(time.Now()) {
				return errors.New("--date must be in the future")
			}

			return withCatalog(logger, func(c *catalog.Catalog) error {
				screening, err := c.AddScreening(cmd.Context(), movieID, when)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", screening.ID, screening.Slug, screening.Date.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&movieID, "movie-id", 0, "TMDB movie id")
	cmd.Flags().StringVar(&date, "date", "", "screening start, e.g. 2025-01-31T20:30:00+01:00")
	_ = cmd.MarkFlagRequired("movie-id")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func promoteCmd(logger *slog.Logger) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Give a user the admin role",
		Long:  `Give a user the admin role. The user must sign in again for it to apply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.NewDatabasePool(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			err = repository.NewPostgresUserRepository(db).UpdateRole(cmd.Context(), email, domain.RoleAdmin)
			if err != nil {
				if errors.Is(err, domain.ErrRecordNotFound) {
					return fmt.Errorf("no user with email %q", email)
				}
				return err
			}

			logger.Info("user promoted", "email", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user to promote")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func withCatalog(logger *slog.Logger, fn func(*catalog.Catalog) error) error {
	if cfg.TMDB.ApiKey == "" {
		return errors.New("a TMDB token is required (--tmdb-api-key or TMDB_API_KEY)")
	}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(newCatalog(db, logger))
}

func newCatalog(db *pgxpool.Pool, logger *slog.Logger) *catalog.Catalog {
	client := tmdb.NewClient(nil, cfg.TMDB.ApiKey, tmdb.WithLanguage(cfg.TMDB.Language))

	return catalog.New(client, repository.NewPostgresScreeningRepository(db), logger)
}
