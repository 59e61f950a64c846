package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/flotahub/internal/app/store/audit"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		Success:   true,
	}))

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].ID.IsZero(), "ID is generated")
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp is set")
	assert.Equal(t, "192.168.1.1", events[0].IP)
}

func TestStore_QueryScopedToOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()
	for _, org := range []primitive.ObjectID{orgA, orgA, orgB} {
		require.NoError(t, store.Log(ctx, audit.Event{
			Category:       audit.CategoryFleet,
			EventType:      audit.EventTurnoLiquidated,
			OrganizationID: &org,
			Success:        true,
		}))
	}
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginFailedUserNotFound,
	}))

	a := audit.QueryFilter{Scope: tenant.ScopedTo(orgA)}
	events, err := store.Query(ctx, a)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, orgA, *e.OrganizationID)
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	n, err = store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestStore_QueryTimeWindowNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Log(ctx, audit.Event{
			Category:  audit.CategoryAdmin,
			EventType: audit.EventUserUpdated,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	start, end := base.Add(time.Hour), base.Add(3*time.Hour)
	events, err := store.Query(ctx, audit.QueryFilter{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].Timestamp.After(events[2].Timestamp))

	page, err := store.Query(ctx, audit.QueryFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
