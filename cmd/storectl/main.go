package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	customerapp "github.com/dwikikusuma/storefront/internal/customer/app"
	"github.com/dwikikusuma/storefront/migrations"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "storectl", Env: cfg.AppEnv, Level: cfg.LogLevel})

	rootCmd := &cobra.Command{
		Use:           "storectl",
		Short:         "storefront operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		migrateCommand(cfg),
		seedCommand(cfg),
		relayCommand(cfg, log),
		hashPasswordCommand(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func openDB(cfg config.Config) (*sql.DB, error) {
	return postgres.Open(postgres.Config{URL: cfg.DatabaseURL, MaxOpenConns: 4})
}

func migrateCommand(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := openDB(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := migrations.Up(db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrated up")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("steps must be a positive integer: %q", args[0])
					}
					steps = n
				}

				db, err := openDB(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := migrations.Down(db, steps); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", steps)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := openDB(cfg)
				if err != nil {
					return err
				}
				defer db.Close()

				v, dirty, err := migrations.Version(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			},
		},
	)
	return cmd
}

func hashPasswordCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "print a bcrypt hash using the configured cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := customerapp.NewVerifier(cfg.BcryptCost).Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
