package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/streamflix-backend/internal/seed"
	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/db"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

var seeder *seed.Seeder

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load plans and demo data",
	Long: `Load the subscription plan catalog and optional demo data.

Every subcommand can be re-run safely.

Examples:
  seed plans        # upsert basic_sd, standard_hd and premium_uhd
  seed all          # plans, users, content and the FRIENDPASS invitation`,
	SilenceUsage: true,
}

func step(use, short string, run func(*seed.Seeder, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seeder == nil {
				return fmt.Errorf("seeder not initialized - database connection required")
			}
			return run(seeder, cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(
		step("plans", "Upsert the subscription plans", (*seed.Seeder).Plans),
		step("users", "Create verified demo users (password: "+seed.DemoPassword+")", (*seed.Seeder).Users),
		step("content", "Create a demo movie and series", (*seed.Seeder).Content),
		step("invitation", "Issue the "+seed.DemoInvitationCode+" demo invitation", (*seed.Seeder).Invitation),
		step("all", "Run every seed step", (*seed.Seeder).All),
	)
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	seeder, err = seed.New(dbClient.DB(), logg, cfg.Password)
	requireResource(ctx, logg, "seeder", err)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logg.Error(ctx, "seed failed", err)
		dbClient.Close()
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
