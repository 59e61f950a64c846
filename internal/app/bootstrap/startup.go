// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/integrity"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/app/system/workers"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// scanWorker is started by Startup when a scan interval is configured and
// stopped by Shutdown.
var scanWorker *workers.IntegrityScan

// Startup runs one-time initialization after schema setup and before the
// HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(appCfg.Timeouts)

	if appCfg.SuperadminUsername != "" {
		if err := ensureSuperadmin(ctx, deps, appCfg.SuperadminUsername, appCfg.SuperadminPassword, logger); err != nil {
			return err
		}
	}

	if appCfg.IntegrityScanInterval > 0 {
		auditor := integrity.NewForDB(deps.MongoDatabase, logger)
		scanWorker = workers.NewIntegrityScan(auditor, logger, appCfg.IntegrityScanInterval, timeouts.Batch())
		scanWorker.Start()
	}
	return nil
}

// ensureSuperadmin creates the configured superadmin when the database has
// none. An existing superadmin, of any name, is left untouched.
func ensureSuperadmin(ctx context.Context, deps DBDeps, username, password string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	n, err := users.CountSuperadmins(ctx)
	if err != nil {
		return fmt.Errorf("count superadmins: %w", err)
	}
	if n > 0 {
		logger.Debug("superadmin present, skipping bootstrap", zap.Int64("count", n))
		return nil
	}

	if err := auth.ValidatePassword(password); err != nil {
		return fmt.Errorf("superadmin_password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash superadmin password: %w", err)
	}

	u, err := users.Create(ctx, models.User{
		Username:     username,
		FullName:     "Superadmin",
		Role:         models.RoleSuperadmin,
		PasswordHash: hash,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create superadmin: %w", err)
	}
	logger.Info("bootstrapped superadmin", zap.String("username", u.Username), zap.String("user_id", u.ID.Hex()))
	return nil
}
