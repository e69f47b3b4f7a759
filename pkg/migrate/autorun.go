package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/foodlink-backend/pkg/config"
	"github.com/angelmondragon/foodlink-backend/pkg/db"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at boot when running in dev with
// FOODLINK_AUTO_MIGRATE set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	applied, err := Run(ctx, sqlDB, DefaultDir, "up")
	for _, o := range applied {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":     o.Version,
			"file":        o.File,
			"duration_ms": o.Duration.Milliseconds(),
		}), "migration applied")
	}
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "applied", len(applied)), "dev migrations up to date")
	return nil
}
