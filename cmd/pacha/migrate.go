package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pacha/internal/database"
	"github.com/at-ishikawa/pacha/schemas"
)

func newMigrateCommand() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = db.Close() }()
			if err := database.WaitReady(ctx, db, cfg.Database.ConnectRetryAttempts); err != nil {
				return fmt.Errorf("database.WaitReady() > %w", err)
			}

			migrator := database.NewMigrator(db, schemas.Migrations)
			if status {
				pending, err := migrator.Pending(ctx)
				if err != nil {
					return fmt.Errorf("migrator.Pending() > %w", err)
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "Database is up to date.")
					return nil
				}
				fmt.Fprintf(out, "%d pending migration(s):\n", len(pending))
				for _, migration := range pending {
					fmt.Fprintf(out, "  %04d_%s\n", migration.Version, migration.Name)
				}
				return nil
			}

			applied, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migrator.Up() > %w", err)
			}
			fmt.Fprintf(out, "Applied %d migration(s).\n", applied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "List pending migrations without applying them")
	return cmd
}
