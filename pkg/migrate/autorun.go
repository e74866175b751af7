package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot when running in dev
// with STOREFRONT_AUTO_MIGRATE enabled. Other environments run cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	runner, err := NewRunner(sqlDB, Embedded())
	if err != nil {
		return err
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "migrate.autorun.start")

	applied, err := runner.Up(ctx)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logg.Info(logg.WithField(ctx, "applied", applied), "migrate.autorun.complete")
	return nil
}
