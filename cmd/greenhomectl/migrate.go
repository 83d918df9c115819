package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"greenhome/db/migrations"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Apply, roll back or inspect schema migrations",
	}
	cmd.AddCommand(migrateStep("up", "Apply all pending migrations", migrations.Up))
	cmd.AddCommand(migrateStep("down", "Roll back the latest migration", migrations.Down))
	cmd.AddCommand(migrateStep("status", "Show which migrations are applied", migrations.Status))
	return cmd
}

func migrateStep(use, short string, fn func(*sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()
			return fn(conn.DB)
		},
	}
}
