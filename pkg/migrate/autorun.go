package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/streamflix-backend/pkg/config"
	"github.com/angelmondragon/streamflix-backend/pkg/db"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/logger"
)

// MaybeRunDev migrates the schema on startup when running in dev with
// STREAMFLIX_AUTO_MIGRATE set. SQLite is brought up with gorm's AutoMigrate
// since the goose files are Postgres SQL.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "auto-migrating sqlite schema (dev auto-run)")
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto-migrating sqlite schema: %w", err)
		}
		return nil
	}

	sqlDB, err := client.SQLDB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	provider, err := NewProvider(sqlDB, DefaultDir)
	if err != nil {
		return err
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	results, err := provider.Up(ctx)
	for _, r := range results {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":     r.Source.Version,
			"duration_ms": r.Duration.Milliseconds(),
		}), "migration applied")
	}
	if err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(logg.WithField(ctx, "applied", len(results)), "goose migrations completed")
	return nil
}
