// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/flotahub/internal/app/features/auditlog"
	companiesfeature "github.com/dalemusser/flotahub/internal/app/features/companies"
	healthfeature "github.com/dalemusser/flotahub/internal/app/features/health"
	loginfeature "github.com/dalemusser/flotahub/internal/app/features/login"
	organizationsfeature "github.com/dalemusser/flotahub/internal/app/features/organizations"
	servicesfeature "github.com/dalemusser/flotahub/internal/app/features/services"
	"github.com/dalemusser/flotahub/internal/app/features/shared"
	turnosfeature "github.com/dalemusser/flotahub/internal/app/features/turnos"
	usersfeature "github.com/dalemusser/flotahub/internal/app/features/users"
	vehiclesfeature "github.com/dalemusser/flotahub/internal/app/features/vehicles"
	"github.com/dalemusser/flotahub/internal/app/store/audit"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/auditlog"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/metrics"
	"github.com/dalemusser/flotahub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Every feature is built from one shared.Env; the
// tenant API routes sit behind bearer authentication and each handler
// checks its own permission.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	env := &shared.Env{
		DB:       db,
		Log:      logger,
		Cache:    deps.Cache,
		CacheTTL: appCfg.CacheTTL,
		Audit:    auditlog.New(audit.New(db), logger, appCfg.auditConfig()),
	}

	tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}
	// The loader reads organization state through the cached store so a
	// deactivated organization locks its users out on the next request.
	loader := userstore.NewFetcher(db, env.Organizations())
	requireAuth := auth.NewMiddleware(tokens, loader, logger).RequireAuth

	r := chi.NewRouter()
	r.Use(metrics.Instrument)

	// Probes and scraping stay unauthenticated.
	var cachePing healthfeature.Pinger
	if deps.Redis != nil {
		cachePing = deps.Redis
	}
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, cachePing, logger)))
	r.Handle("/metrics", metrics.Handler())

	loginHandler := loginfeature.NewHandler(env, tokens, ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute))
	r.Mount("/auth", loginfeature.Routes(loginHandler, requireAuth))

	r.Group(func(api chi.Router) {
		api.Use(requireAuth)

		orgHandler := organizationsfeature.NewHandler(env)
		api.Mount("/superadmin/organizations", organizationsfeature.Routes(orgHandler))
		api.Mount("/organization/me", organizationsfeature.MineRoutes(orgHandler))

		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(env)))
		api.Mount("/vehiculos", vehiclesfeature.Routes(vehiclesfeature.NewHandler(env)))
		api.Mount("/companies", companiesfeature.Routes(companiesfeature.NewHandler(env)))
		api.Mount("/turnos", turnosfeature.Routes(turnosfeature.NewHandler(env)))
		api.Mount("/services", servicesfeature.Routes(servicesfeature.NewHandler(env, appCfg.SyncMaxItems)))
		api.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(env)))
	})

	return r, nil
}
