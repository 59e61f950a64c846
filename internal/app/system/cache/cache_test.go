package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestKey_String(t *testing.T) {
	org := primitive.NewObjectID()
	assert.Equal(t, org.Hex()+":vehicles:abc", Key{OrgID: org, Resource: "vehicles", ID: "abc"}.String())
	assert.Equal(t, "global:organizations:x", Key{Resource: "organizations", ID: "x"}.String())
}

func TestMemory_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, m.Set(ctx, Key{OrgID: orgA, Resource: "vehicles", ID: "1"}, []byte("a"), time.Minute))

	got, err := m.Get(ctx, Key{OrgID: orgA, Resource: "vehicles", ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	_, err = m.Get(ctx, Key{OrgID: orgB, Resource: "vehicles", ID: "1"})
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	k := Key{Resource: "organizations", ID: "x"}
	require.NoError(t, m.Set(ctx, k, []byte("1"), 30*time.Second))

	now = now.Add(29 * time.Second)
	_, err := m.Get(ctx, k)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.Get(ctx, k)
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_DeleteAndCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	k := Key{Resource: "r", ID: "1"}
	val := []byte("abc")
	require.NoError(t, m.Set(ctx, k, val, 0))
	val[0] = 'z'

	got, err := m.Get(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, m.Delete(ctx, k))
	_, err = m.Get(ctx, k)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}
	require.NoError(t, c.Set(ctx, Key{ID: "1"}, []byte("x"), time.Minute))
	_, err := c.Get(ctx, Key{ID: "1"})
	assert.ErrorIs(t, err, ErrMiss)
}

func redisURL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}
	if u := os.Getenv("FLOTAHUB_TEST_REDIS_URL"); u != "" {
		return u
	}
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return "redis://" + endpoint + "/0"
}

func TestRedis_RoundTrip(t *testing.T) {
	url := redisURL(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r, err := NewRedis(ctx, url, "flotahub-test:")
	require.NoError(t, err)
	defer r.Close()

	org := primitive.NewObjectID()
	k := Key{OrgID: org, Resource: "companies", ID: "c1"}

	_, err = r.Get(ctx, k)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, k, []byte("payload"), time.Minute))
	got, err := r.Get(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	_, err = r.Get(ctx, Key{OrgID: primitive.NewObjectID(), Resource: "companies", ID: "c1"})
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Delete(ctx, k))
	_, err = r.Get(ctx, k)
	assert.ErrorIs(t, err, ErrMiss)
}
