package uniqueness_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/uniqueness"
	"github.com/dalemusser/flotahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCheck_ScopedToOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	orgA := fx.CreateOrganization(ctx, "Org A")
	orgB := fx.CreateOrganization(ctx, "Org B")
	veh := fx.CreateVehicle(ctx, orgA.ID, "MULTI123")
	c := db.Collection("vehicles")

	err := uniqueness.VehiclePlate.Check(ctx, c, orgA.ID, "MULTI123", primitive.NilObjectID)
	assert.ErrorIs(t, err, uniqueness.VehiclePlate.Err())
	assert.Equal(t, "plate already exists in your organization", apperr.Message(err))

	assert.NoError(t, uniqueness.VehiclePlate.Check(ctx, c, orgB.ID, "MULTI123", primitive.NilObjectID))
	// Updating the record itself does not collide.
	assert.NoError(t, uniqueness.VehiclePlate.Check(ctx, c, orgA.ID, "MULTI123", veh.ID))
}

func TestTranslate_DuplicateKeyFromIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := primitive.NewObjectID()
	c := db.Collection("companies")
	doc := func() bson.M {
		return bson.M{"_id": primitive.NewObjectID(), "organization_id": org, "numero_cliente": "C-1", "nombre": "Acme"}
	}
	_, err := c.InsertOne(ctx, doc())
	require.NoError(t, err)

	_, err = c.InsertOne(ctx, doc())
	require.Error(t, err)
	got := uniqueness.CompanyClientNumber.Translate(err)
	assert.ErrorIs(t, got, uniqueness.CompanyClientNumber.Err())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(got))
}

func TestTranslate_PassesOtherErrors(t *testing.T) {
	other := errors.New("network")
	assert.Same(t, other, uniqueness.VehiclePlate.Translate(other))
	assert.NoError(t, uniqueness.VehiclePlate.Translate(nil))
}
