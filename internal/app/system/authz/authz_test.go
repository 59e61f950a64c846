package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCan_Matrix(t *testing.T) {
	tests := []struct {
		role models.Role
		res  authz.Resource
		act  authz.Action
		want bool
	}{
		{models.RoleSuperadmin, authz.Organizations, authz.Create, true},
		{models.RoleSuperadmin, authz.Vehicles, authz.Delete, true},
		{models.RoleSuperadmin, authz.Turnos, authz.Read, true},
		{models.RoleSuperadmin, authz.Turnos, authz.Create, false},
		{models.RoleSuperadmin, authz.Services, authz.Create, false},

		{models.RoleAdmin, authz.Organizations, authz.Read, false},
		{models.RoleAdmin, authz.Users, authz.Create, true},
		{models.RoleAdmin, authz.Companies, authz.Update, true},
		{models.RoleAdmin, authz.Turnos, authz.Manage, true},
		{models.RoleAdmin, authz.Turnos, authz.Create, false},
		{models.RoleAdmin, authz.Services, authz.Delete, true},

		{models.RoleTaxista, authz.Organizations, authz.Read, false},
		{models.RoleTaxista, authz.Users, authz.Read, true},
		{models.RoleTaxista, authz.Users, authz.Update, false},
		{models.RoleTaxista, authz.Vehicles, authz.Read, true},
		{models.RoleTaxista, authz.Vehicles, authz.Create, false},
		{models.RoleTaxista, authz.Turnos, authz.Create, true},
		{models.RoleTaxista, authz.Turnos, authz.Manage, false},
		{models.RoleTaxista, authz.Services, authz.Create, true},
		{models.RoleTaxista, authz.Services, authz.Delete, false},

		{models.RoleUnknown, authz.Vehicles, authz.Read, false},
		{models.RoleAdmin, authz.Vehicles, authz.Read | authz.Create, true},
		{models.RoleTaxista, authz.Vehicles, authz.Read | authz.Create, false},
		{models.RoleAdmin, authz.Vehicles, 0, false},
	}
	for _, tt := range tests {
		got := authz.Can(tt.role, tt.res, tt.act)
		assert.Equal(t, tt.want, got, "%s %s %d", tt.role, tt.res, tt.act)
	}
}

func TestOwnOnly(t *testing.T) {
	assert.True(t, authz.OwnOnly(models.RoleTaxista, authz.Services))
	assert.True(t, authz.OwnOnly(models.RoleTaxista, authz.Users))
	assert.False(t, authz.OwnOnly(models.RoleTaxista, authz.Vehicles))
	assert.False(t, authz.OwnOnly(models.RoleAdmin, authz.Services))
}

func TestCanAssignRole(t *testing.T) {
	assert.True(t, authz.CanAssignRole(models.RoleSuperadmin, models.RoleAdmin))
	assert.True(t, authz.CanAssignRole(models.RoleSuperadmin, models.RoleSuperadmin))
	assert.True(t, authz.CanAssignRole(models.RoleAdmin, models.RoleTaxista))
	assert.False(t, authz.CanAssignRole(models.RoleAdmin, models.RoleAdmin))
	assert.False(t, authz.CanAssignRole(models.RoleAdmin, models.RoleSuperadmin))
	assert.False(t, authz.CanAssignRole(models.RoleTaxista, models.RoleTaxista))
	assert.False(t, authz.CanAssignRole(models.RoleSuperadmin, models.RoleUnknown))
}

func TestCheck(t *testing.T) {
	assert.True(t, apperr.IsKind(authz.Check(nil, authz.Users, authz.Read), apperr.KindUnauthorized))

	org := primitive.NewObjectID()
	taxista := &auth.Principal{UserID: primitive.NewObjectID(), Role: models.RoleTaxista, OrganizationID: &org}
	assert.NoError(t, authz.Check(taxista, authz.Services, authz.Create))
	assert.True(t, apperr.IsKind(authz.Check(taxista, authz.Organizations, authz.Read), apperr.KindForbidden))
}

func TestRequire_Middleware(t *testing.T) {
	called := false
	h := authz.Require(authz.Organizations, authz.Read, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	org := primitive.NewObjectID()
	req := httptest.NewRequest(http.MethodGet, "/superadmin/organizations", nil)
	req = auth.WithTestPrincipal(req, &auth.Principal{UserID: primitive.NewObjectID(), Role: models.RoleAdmin, OrganizationID: &org})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	req = httptest.NewRequest(http.MethodGet, "/superadmin/organizations", nil)
	req = auth.WithTestPrincipal(req, &auth.Principal{UserID: primitive.NewObjectID(), Role: models.RoleSuperadmin})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, called)
}

func TestAuditEventsReadOnlyForManagers(t *testing.T) {
	assert.True(t, authz.Can(models.RoleSuperadmin, authz.AuditEvents, authz.Read))
	assert.True(t, authz.Can(models.RoleAdmin, authz.AuditEvents, authz.Read))
	assert.False(t, authz.Can(models.RoleAdmin, authz.AuditEvents, authz.Delete))
	assert.False(t, authz.Can(models.RoleTaxista, authz.AuditEvents, authz.Read))
}
