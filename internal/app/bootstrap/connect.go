// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/flotahub/internal/app/system/cache"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and the lookup cache backend.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	switch appCfg.CacheBackend {
	case cacheRedis:
		rc, err := cache.NewRedis(ctx, appCfg.RedisURL, appCfg.RedisPrefix)
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("redis connect: %w", err)
		}
		deps.Cache = rc
		deps.Redis = rc
		logger.Info("lookup cache: redis", zap.String("prefix", appCfg.RedisPrefix))
	default:
		deps.Cache = cache.NewMemory()
		logger.Info("lookup cache: memory")
	}

	return deps, nil
}
