package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/popcornpalace/booking-api/internal/app"
	"github.com/popcornpalace/booking-api/internal/vcs"
	"github.com/spf13/cobra"
)

var cfg app.Config

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Popcorn Palace administration",
	Long:  `Schedule screenings and manage users against the booking database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DB.Dsn == "" {
			return fmt.Errorf("a database DSN is required (--db-dsn or DATABASE_URL)")
		}
		return nil
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Version:\t%s\n", vcs.Version())
	},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := app.LoadEnv(); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	flags := flag.NewFlagSet("admin", flag.ContinueOnError)
	cfg.RegisterFlags(flags)
	rootCmd.PersistentFlags().AddGoFlagSet(flags)

	rootCmd.AddCommand(populateCmd(logger), addScreeningCmd(logger), promoteCmd(logger), versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
