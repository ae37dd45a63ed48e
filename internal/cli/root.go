// Package cli implements the buildflow admin command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gperojohn83-art/Construction/internal/config"
	"github.com/gperojohn83-art/Construction/internal/database"
	"github.com/gperojohn83-art/Construction/internal/log"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// env is filled by the root command before any subcommand runs.
type env struct {
	cfg    *config.AppConfig
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "buildflow",
		Short:         "BuildFlow administration",
		Long:          "Administrative tasks for the BuildFlow API: database migrations and demo data.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg != nil {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = log.New(cfg.Environment, cfg.Log.Level)
			return nil
		},
	}

	rootCmd.AddCommand(newMigrateCmd(e))
	rootCmd.AddCommand(newSeedCmd(e))
	return rootCmd
}

func (e *env) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return database.NewPostgresPool(ctx, e.cfg.Postgres, e.logger)
}
