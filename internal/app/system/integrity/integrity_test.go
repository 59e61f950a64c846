package integrity_test

import (
	"testing"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/integrity"
	"github.com/dalemusser/flotahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func bypass() *options.InsertOneOptions {
	return options.InsertOne().SetBypassDocumentValidation(true)
}

func TestAuditor_CleanDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org A")
	fixtures.CreateSuperadmin(ctx, "root")
	taxista := fixtures.CreateTaxista(ctx, "taxi", org.ID)
	v := fixtures.CreateVehicle(ctx, org.ID, "1111AAA")
	tr := fixtures.CreateOpenTurno(ctx, taxista, v, 0)
	fixtures.CreateService(ctx, tr, 10)

	rep, err := integrity.NewForDB(db, zap.NewNop()).Scan(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Clean(), "unexpected findings: %v", rep.Findings)
	assert.Equal(t, int64(2), rep.Scanned["users"])
	assert.Equal(t, int64(1), rep.Scanned["services"])
}

func TestAuditor_FindsViolations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := fixtures.CreateOrganization(ctx, "Org A")
	orgB := fixtures.CreateOrganization(ctx, "Org B")
	taxistaA := fixtures.CreateTaxista(ctx, "taxi-a", orgA.ID)
	vA := fixtures.CreateVehicle(ctx, orgA.ID, "1111AAA")
	vB := fixtures.CreateVehicle(ctx, orgB.ID, "2222BBB")
	tr := fixtures.CreateOpenTurno(ctx, taxistaA, vA, 0)

	// Vehicle without organization.
	_, err := db.Collection("vehicles").InsertOne(ctx, bson.M{"_id": primitive.NewObjectID(), "matricula": "ORPHAN"}, bypass())
	require.NoError(t, err)

	// Admin without organization.
	orphanID := primitive.NewObjectID()
	_, err = db.Collection("users").InsertOne(ctx, bson.M{
		"_id": orphanID, "username": "lost", "username_ci": "lost", "role": "admin", "active": true,
	}, bypass())
	require.NoError(t, err)

	// Service in org A pointing at org B's vehicle and a missing company.
	missing := primitive.NewObjectID()
	svcID := primitive.NewObjectID()
	_, err = db.Collection("services").InsertOne(ctx, bson.M{
		"_id":             svcID,
		"organization_id": orgA.ID,
		"taxista_id":      taxistaA.ID,
		"vehiculo_id":     vB.ID,
		"empresa_id":      missing,
		"turno_id":        tr.ID,
		"fecha":           "2026-03-01",
		"created_at":      time.Now().UTC(),
	})
	require.NoError(t, err)

	auditor := integrity.NewForDB(db, zap.NewNop())
	rep, err := auditor.Scan(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.Count(integrity.MissingOrganization))
	assert.Equal(t, 1, rep.Count(integrity.UserWithoutOrganization))
	assert.Equal(t, 1, rep.Count(integrity.CrossOrgReference))
	assert.Equal(t, 1, rep.Count(integrity.DanglingReference))

	for _, f := range rep.Findings {
		switch f.Problem {
		case integrity.CrossOrgReference:
			assert.Equal(t, svcID, f.ID)
			assert.Equal(t, "vehiculo_id", f.Field)
		case integrity.DanglingReference:
			assert.Equal(t, "empresa_id", f.Field)
			require.NotNil(t, f.Ref)
			assert.Equal(t, missing, *f.Ref)
		}
	}

	// Scan never writes.
	var lost bson.M
	require.NoError(t, db.Collection("users").FindOne(ctx, bson.M{"_id": orphanID}).Decode(&lost))
	assert.Equal(t, true, lost["active"])
}

func TestAuditor_FixQuarantinesOrphanUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateSuperadmin(ctx, "root")
	orphanID := primitive.NewObjectID()
	_, err := db.Collection("users").InsertOne(ctx, bson.M{
		"_id": orphanID, "username": "lost", "username_ci": "lost", "role": "taxista", "active": true,
	}, bypass())
	require.NoError(t, err)

	auditor := integrity.NewForDB(db, zap.NewNop())
	rep, err := auditor.Scan(ctx)
	require.NoError(t, err)
	require.NoError(t, auditor.Fix(ctx, &rep))
	assert.Equal(t, int64(1), rep.Quarantined)

	var doc struct {
		Active             bool                `bson:"active"`
		NeedsOrgAssignment bool                `bson:"needs_org_assignment"`
		OrganizationID     *primitive.ObjectID `bson:"organization_id"`
	}
	require.NoError(t, db.Collection("users").FindOne(ctx, bson.M{"_id": orphanID}).Decode(&doc))
	assert.False(t, doc.Active)
	assert.True(t, doc.NeedsOrgAssignment)
	assert.Nil(t, doc.OrganizationID, "no organization is guessed")

	var root bson.M
	require.NoError(t, db.Collection("users").FindOne(ctx, bson.M{"username": "root"}).Decode(&root))
	assert.Equal(t, true, root["active"], "superadmins are never quarantined")
}
