package tenant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeOrgs map[primitive.ObjectID]bool

func (f fakeOrgs) OrganizationExists(_ context.Context, id primitive.ObjectID) (bool, error) {
	return f[id], nil
}

type failingOrgs struct{}

func (failingOrgs) OrganizationExists(context.Context, primitive.ObjectID) (bool, error) {
	return false, errors.New("db down")
}

func principal(role models.Role, org *primitive.ObjectID) *auth.Principal {
	return &auth.Principal{UserID: primitive.NewObjectID(), Role: role, OrganizationID: org}
}

func TestResolve_Superadmin(t *testing.T) {
	ctx := context.Background()
	orgA := primitive.NewObjectID()
	r := tenant.NewResolver(fakeOrgs{orgA: true})
	sa := principal(models.RoleSuperadmin, nil)

	s, err := r.Resolve(ctx, sa, "")
	require.NoError(t, err)
	assert.True(t, s.IsUnscoped())

	s, err = r.Resolve(ctx, sa, orgA.Hex())
	require.NoError(t, err)
	got, ok := s.OrgID()
	assert.True(t, ok)
	assert.Equal(t, orgA, got)

	_, err = r.Resolve(ctx, sa, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, tenant.ErrOrganizationMissing)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = r.Resolve(ctx, sa, "not-an-id")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestResolve_OrgMember(t *testing.T) {
	ctx := context.Background()
	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()
	r := tenant.NewResolver(fakeOrgs{orgA: true, orgB: true})

	for _, role := range []models.Role{models.RoleAdmin, models.RoleTaxista} {
		p := principal(role, &orgA)

		s, err := r.Resolve(ctx, p, "")
		require.NoError(t, err)
		got, _ := s.OrgID()
		assert.Equal(t, orgA, got)

		_, err = r.Resolve(ctx, p, orgA.Hex())
		assert.NoError(t, err)

		_, err = r.Resolve(ctx, p, orgB.Hex())
		assert.ErrorIs(t, err, tenant.ErrSpoofedOrganization)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	}

	_, err := r.Resolve(ctx, principal(models.RoleAdmin, nil), "")
	assert.ErrorIs(t, err, tenant.ErrNoOrganization)

	_, err = r.Resolve(ctx, nil, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestResolve_LookupFailureIsInternal(t *testing.T) {
	r := tenant.NewResolver(failingOrgs{})
	_, err := r.Resolve(context.Background(), principal(models.RoleSuperadmin, nil), primitive.NewObjectID().Hex())
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestScope_FilterAndWrite(t *testing.T) {
	org := primitive.NewObjectID()

	f := tenant.ScopedTo(org).Filter(bson.M{"estado": "open"})
	assert.Equal(t, org, f["organization_id"])
	assert.Equal(t, "open", f["estado"])

	f = tenant.Unscoped().Filter(nil)
	_, has := f["organization_id"]
	assert.False(t, has)

	got, err := tenant.ScopedTo(org).ForWrite()
	require.NoError(t, err)
	assert.Equal(t, org, got)

	_, err = tenant.Unscoped().ForWrite()
	assert.ErrorIs(t, err, tenant.ErrTargetRequired)

	assert.True(t, tenant.Unscoped().Allows(org))
	assert.True(t, tenant.ScopedTo(org).Allows(org))
	assert.False(t, tenant.ScopedTo(org).Allows(primitive.NewObjectID()))
}
