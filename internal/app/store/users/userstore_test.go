package userstore_test

import (
	"errors"
	"testing"

	organizationstore "github.com/dalemusser/flotahub/internal/app/store/organizations"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/dalemusser/flotahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_Taxista(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org A")
	created, err := store.Create(ctx, models.User{
		Username:       "  Pepe ",
		FullName:       "Pepe  Garcia",
		Email:          " Pepe@Example.com",
		Role:           models.RoleTaxista,
		OrganizationID: &org.ID,
		PasswordHash:   "x",
		Active:         true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Username != "Pepe" || created.UsernameCI != "pepe" {
		t.Errorf("username = %q / %q", created.Username, created.UsernameCI)
	}
	if created.Email != "pepe@example.com" || created.FullName != "Pepe Garcia" {
		t.Errorf("normalization failed: %+v", created)
	}
}

func TestStore_Create_TenancyRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := primitive.NewObjectID()
	tests := []struct {
		name string
		role models.Role
		org  *primitive.ObjectID
		want error
	}{
		{"admin without org", models.RoleAdmin, nil, userstore.ErrOrgRequired},
		{"taxista without org", models.RoleTaxista, nil, userstore.ErrOrgRequired},
		{"superadmin with org", models.RoleSuperadmin, &org, userstore.ErrSuperadminOrg},
		{"unknown role", models.RoleUnknown, &org, userstore.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, models.User{Username: tt.name, Role: tt.role, OrganizationID: tt.org, PasswordHash: "x"})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Username: "root", Role: models.RoleSuperadmin, PasswordHash: "x"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Username: "ROOT", Role: models.RoleSuperadmin, PasswordHash: "x"})
	if !errors.Is(err, userstore.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_GetByID_Scoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := fixtures.CreateOrganization(ctx, "Org A")
	orgB := fixtures.CreateOrganization(ctx, "Org B")
	u := fixtures.CreateTaxista(ctx, "taxi-a", orgA.ID)

	if _, err := store.GetByID(ctx, tenant.ScopedTo(orgA.ID), u.ID); err != nil {
		t.Errorf("own org lookup failed: %v", err)
	}
	if _, err := store.GetByID(ctx, tenant.Unscoped(), u.ID); err != nil {
		t.Errorf("unscoped lookup failed: %v", err)
	}
	_, err := store.GetByID(ctx, tenant.ScopedTo(orgB.ID), u.ID)
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("cross-org lookup should be not found, got %v", err)
	}
}

func TestStore_GetByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateSuperadmin(ctx, "Boss")
	u, err := store.GetByUsername(ctx, "boss")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if u.Role != models.RoleSuperadmin {
		t.Errorf("role = %v", u.Role)
	}
	if _, err := store.GetByUsername(ctx, "nobody"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List_Scoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := fixtures.CreateOrganization(ctx, "Org A")
	orgB := fixtures.CreateOrganization(ctx, "Org B")
	fixtures.CreateAdmin(ctx, "admin-a", orgA.ID)
	fixtures.CreateTaxista(ctx, "taxi-a", orgA.ID)
	fixtures.CreateTaxista(ctx, "taxi-b", orgB.ID)

	page, err := store.List(ctx, tenant.ScopedTo(orgA.ID), userstore.ListFilter{}, paging.Params{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 users in org A, got %d", len(page.Items))
	}
	for _, u := range page.Items {
		if u.OrganizationID == nil || *u.OrganizationID != orgA.ID {
			t.Errorf("leaked user %s from another org", u.Username)
		}
	}

	role := models.RoleTaxista
	page, err = store.List(ctx, tenant.Unscoped(), userstore.ListFilter{Role: &role}, paging.Params{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("expected 2 taxistas overall, got %d", len(page.Items))
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org A")
	u := fixtures.CreateTaxista(ctx, "taxi", org.ID)
	scope := tenant.ScopedTo(org.ID)

	name := "Nuevo Nombre"
	active := false
	updated, err := store.Update(ctx, scope, u.ID, userstore.Update{FullName: &name, Active: &active})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.FullName != name || updated.Active {
		t.Errorf("unexpected result %+v", updated)
	}

	super := models.RoleSuperadmin
	_, err = store.Update(ctx, scope, u.ID, userstore.Update{Role: &super})
	if !errors.Is(err, userstore.ErrSuperadminOrg) {
		t.Errorf("promoting a tenant user to superadmin should fail, got %v", err)
	}

	_, err = store.Update(ctx, tenant.ScopedTo(primitive.NewObjectID()), u.ID, userstore.Update{FullName: &name})
	if !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("cross-org update should be not found, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := fixtures.CreateOrganization(ctx, "Org A")
	orgB := fixtures.CreateOrganization(ctx, "Org B")
	u := fixtures.CreateTaxista(ctx, "taxi", orgA.ID)

	if err := store.Delete(ctx, tenant.ScopedTo(orgB.ID), u.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("cross-org delete should be not found, got %v", err)
	}
	if err := store.Delete(ctx, tenant.ScopedTo(orgA.ID), u.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

func TestFetcher_LoadPrincipal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	orgs := organizationstore.New(db)
	fetcher := userstore.NewFetcher(db, orgs)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Org A")
	taxista := fixtures.CreateTaxista(ctx, "taxi", org.ID)
	super := fixtures.CreateSuperadmin(ctx, "root")

	p, err := fetcher.LoadPrincipal(ctx, taxista.ID)
	if err != nil || p == nil {
		t.Fatalf("LoadPrincipal = %v, %v", p, err)
	}
	if p.Role != models.RoleTaxista || p.OrganizationID == nil || *p.OrganizationID != org.ID {
		t.Errorf("unexpected principal %+v", p)
	}

	p, err = fetcher.LoadPrincipal(ctx, super.ID)
	if err != nil || p == nil || !p.IsSuperadmin() {
		t.Errorf("superadmin principal = %+v, %v", p, err)
	}

	p, err = fetcher.LoadPrincipal(ctx, primitive.NewObjectID())
	if err != nil || p != nil {
		t.Errorf("unknown user should load nil, got %+v, %v", p, err)
	}

	inactive := false
	if _, err := orgs.Update(ctx, org.ID, organizationstore.Update{Active: &inactive}); err != nil {
		t.Fatalf("deactivate org: %v", err)
	}
	p, err = fetcher.LoadPrincipal(ctx, taxista.ID)
	if err != nil || p != nil {
		t.Errorf("user of inactive org should load nil, got %+v, %v", p, err)
	}

	if _, err := store.Update(ctx, tenant.Unscoped(), super.ID, userstore.Update{Active: &inactive}); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	p, err = fetcher.LoadPrincipal(ctx, super.ID)
	if err != nil || p != nil {
		t.Errorf("inactive user should load nil, got %+v, %v", p, err)
	}
}
