package cli

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/gperojohn83-art/Construction/internal/database"
)

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}

	step := func(use, short string, run func(context.Context, *sql.DB) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				pool, err := e.connect(ctx)
				if err != nil {
					return err
				}
				defer pool.Close()

				db := database.OpenSQL(pool)
				defer db.Close()

				if err := run(ctx, db); err != nil {
					return err
				}
				e.logger.Info().Str("command", "migrate "+use).Msg("done")
				return nil
			},
		}
	}

	cmd.AddCommand(
		step("up", "Apply all pending migrations", database.MigrateUp),
		step("down", "Roll back the latest migration", database.MigrateDown),
		step("status", "Print the migration status", database.MigrateStatus),
	)
	return cmd
}
