package main

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/garrettladley/wext/internal/db"
	pgmigrations "github.com/garrettladley/wext/internal/migrations/postgres"
	"github.com/garrettladley/wext/internal/paths"
)

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  "Applies the poll history migrations to the local sqlite database and, when a database URL is set, the beacon log migrations to postgres.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if _, err := paths.EnsureDir(); err != nil {
				return err
			}
			dbPath, err := paths.DB()
			if err != nil {
				return err
			}

			sqlDB, err := db.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			_ = sqlDB.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "sqlite migrations applied: %s\n", dbPath)

			if databaseURL == "" {
				return nil
			}

			pool, err := pgxpool.New(ctx, databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to postgres: %w", err)
			}
			defer pool.Close()

			if err := pgmigrations.Apply(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "postgres migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string for the beacon log")
	return cmd
}
