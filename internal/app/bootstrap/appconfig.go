// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/auditlog"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig carries
// the framework-level settings (ports, TLS, log level, CORS, body limits).
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Tenant-keyed cache: "memory" or "redis"
	CacheBackend string
	CacheTTL     time.Duration
	RedisURL     string
	RedisPrefix  string

	LoginRatePerMinute int
	SyncMaxItems       int

	// IntegrityScanInterval runs a read-only tenant scan in the background;
	// zero disables it.
	IntegrityScanInterval time.Duration

	// Audit destinations per category: all, db, log or off
	AuditAuth  string
	AuditAdmin string
	AuditFleet string

	// Superadmin bootstrap; skipped when either is empty
	SuperadminUsername string
	SuperadminPassword string

	Timeouts timeouts.Config
}

func (c AppConfig) auditConfig() auditlog.Config {
	return auditlog.Config{Auth: c.AuditAuth, Admin: c.AuditAdmin, Fleet: c.AuditFleet}
}
