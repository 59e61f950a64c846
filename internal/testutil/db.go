package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/indexes"
	"github.com/dalemusser/flotahub/internal/app/system/validators"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv points tests at an existing server instead of a container.
const MongoURIEnv = "FLOTAHUB_TEST_MONGO_URI"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// TestContext returns a context bounded for a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// SetupTestDB returns a fresh database with validators and indexes in
// place. The database is dropped when the test ends. Tests are skipped when
// no MongoDB is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB test in short mode")
	}

	clientOnce.Do(func() { client, clientErr = connect() })
	if clientErr != nil {
		t.Skipf("MongoDB unavailable: %v", clientErr)
	}

	name := "flotahub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := client.Database(name)

	ctx, cancel := TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure validators: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

func connect() (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		var err error
		uri, err = startContainer(ctx)
		if err != nil {
			return nil, err
		}
	}

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, err
	}
	return c, nil
}

// startContainer launches one mongo:7 container per test binary. The
// testcontainers reaper removes it when the process exits.
func startContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}
	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()), nil
}
