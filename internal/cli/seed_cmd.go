package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gperojohn83-art/Construction/internal/repository"
	"github.com/gperojohn83-art/Construction/internal/seed"
)

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo organization",
		Long:  "Creates the demo organization, its admin and sample data. Existing demo data is kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := e.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			organizations := repository.NewOrganizationRepository(pool)
			seeder := &seed.Seeder{
				Users:         repository.NewUserRepository(pool),
				Organizations: organizations,
				Memberships:   repository.NewMembershipRepository(pool),
				Projects:      repository.NewProjectRepository(pool),
				Finance:       repository.NewFinanceRepository(pool),
				Notifications: repository.NewNotificationRepository(pool),
				Log:           e.logger,
			}

			result, err := seeder.Run(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "demo organization %s ready (admin %s / %s, %d projects created)\n",
				seed.DemoSlug, seed.DemoEmail, seed.DemoPassword, result.ProjectsCreated)
			return nil
		},
	}
}
