package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/overnite/manifest-backend/pkg/config"
	"github.com/overnite/manifest-backend/pkg/db"
	"github.com/overnite/manifest-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on API boot. It only acts in the dev
// environment with MANIFEST_AUTO_MIGRATE set; other environments run
// cmd/migrate as a release step.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	pool, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	start := time.Now()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	if err := Run(ctx, pool, DefaultDir, "up"); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logg.Info(logg.WithField(ctx, "elapsed_ms", time.Since(start).Milliseconds()), "migrations.applied")
	return nil
}
