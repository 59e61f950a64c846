package turnostore_test

import (
	"testing"
	"time"

	turnostore "github.com/dalemusser/flotahub/internal/app/store/turnos"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/turnostate"
	"github.com/dalemusser/flotahub/internal/app/system/uniqueness"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/dalemusser/flotahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_Create_OneOpenPerTaxista(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := turnostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org A")
	taxista := fixtures.CreateTaxista(ctx, "taxi", org.ID)
	v := fixtures.CreateVehicle(ctx, org.ID, "1111AAA")

	tr := models.Turno{
		OrganizationID: org.ID,
		TaxistaID:      taxista.ID,
		VehiculoID:     v.ID,
		FechaInicio:    "2026-03-01",
		HoraInicio:     "07:30",
		KmInicio:       1000,
	}
	created, err := store.Create(ctx, tr)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoOpen, created.Estado)

	_, err = store.Create(ctx, tr)
	assert.ErrorIs(t, err, uniqueness.OpenTurno.Err(), "storage must reject a second open turno")

	open, err := store.OpenFor(ctx, org.ID, taxista.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, created.ID, open[0].ID)
}

func TestStore_SaveTransition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := turnostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org A")
	taxista := fixtures.CreateTaxista(ctx, "taxi", org.ID)
	admin := fixtures.CreateAdmin(ctx, "admin", org.ID)
	v := fixtures.CreateVehicle(ctx, org.ID, "1111AAA")
	tr := fixtures.CreateOpenTurno(ctx, taxista, v, 100)
	scope := tenant.ScopedTo(org.ID)

	km := 180
	require.NoError(t, turnostate.Close(&tr, turnostate.End{FechaFin: tr.FechaInicio, HoraFin: "18:00", KmFin: &km}, time.Now().UTC()))
	require.NoError(t, store.SaveTransition(ctx, tr, models.TurnoOpen))

	stored, err := store.GetByID(ctx, scope, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoClosed, stored.Estado)
	require.NotNil(t, stored.KmFin)
	assert.Equal(t, 180, *stored.KmFin)

	// A second save from the stale state must not apply.
	assert.ErrorIs(t, store.SaveTransition(ctx, tr, models.TurnoOpen), turnostore.ErrStale)

	require.NoError(t, turnostate.Liquidate(&stored, admin.ID, time.Now().UTC()))
	require.NoError(t, store.SaveTransition(ctx, stored, models.TurnoClosed))
	stored, err = store.GetByID(ctx, scope, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TurnoLiquidated, stored.Estado)
	require.NotNil(t, stored.LiquidatedBy)
	assert.Equal(t, admin.ID, *stored.LiquidatedBy)

	// Once closed, the taxista can open a new shift.
	_, err = store.Create(ctx, models.Turno{OrganizationID: org.ID, TaxistaID: taxista.ID, VehiculoID: v.ID, FechaInicio: "2026-03-02", HoraInicio: "07:00", KmInicio: 180})
	require.NoError(t, err)
}

func TestStore_SummarizeAndDeleteCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := turnostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := fixtures.CreateOrganization(ctx, "Org A")
	orgB := fixtures.CreateOrganization(ctx, "Org B")
	taxista := fixtures.CreateTaxista(ctx, "taxi", orgA.ID)
	v := fixtures.CreateVehicle(ctx, orgA.ID, "1111AAA")
	tr := fixtures.CreateOpenTurno(ctx, taxista, v, 0)
	fixtures.CreateService(ctx, tr, 12.5)
	fixtures.CreateService(ctx, tr, 7.5)

	sum, err := store.Summarize(ctx, orgA.ID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Services)
	assert.InDelta(t, 20.0, sum.Total, 0.001)

	_, err = store.DeleteCascade(ctx, tenant.ScopedTo(orgB.ID), tr.ID)
	assert.ErrorIs(t, err, turnostore.ErrNotFound)

	n, err := store.DeleteCascade(ctx, tenant.ScopedTo(orgA.ID), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := db.Collection("services").CountDocuments(ctx, bson.M{"turno_id": tr.ID})
	require.NoError(t, err)
	assert.Zero(t, left)
	_, err = store.GetByID(ctx, tenant.ScopedTo(orgA.ID), tr.ID)
	assert.ErrorIs(t, err, turnostore.ErrNotFound)
}

func TestStore_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := turnostore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org A")
	t1 := fixtures.CreateTaxista(ctx, "t1", org.ID)
	t2 := fixtures.CreateTaxista(ctx, "t2", org.ID)
	v := fixtures.CreateVehicle(ctx, org.ID, "1111AAA")
	fixtures.CreateOpenTurno(ctx, t1, v, 0)
	fixtures.CreateOpenTurno(ctx, t2, v, 0)

	page, err := store.List(ctx, tenant.ScopedTo(org.ID), turnostore.ListFilter{TaxistaID: &t1.ID}, paging.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, t1.ID, page.Items[0].TaxistaID)

	page, err = store.List(ctx, tenant.ScopedTo(org.ID), turnostore.ListFilter{FechaDesde: "2999-01-01"}, paging.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}
