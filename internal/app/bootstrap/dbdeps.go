// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/flotahub/internal/app/system/cache"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Cache is the tenant-keyed lookup cache; Redis is set only when the
	// redis backend is selected so Shutdown can close it.
	Cache cache.Cache
	Redis *cache.Redis
}
