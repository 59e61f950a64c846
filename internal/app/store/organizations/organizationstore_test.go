package organizationstore_test

import (
	"errors"
	"testing"
	"time"

	organizationstore "github.com/dalemusser/flotahub/internal/app/store/organizations"
	"github.com/dalemusser/flotahub/internal/app/system/cache"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/dalemusser/flotahub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{
		Name:     "  Radio  Taxi Norte ",
		Active:   true,
		Features: models.Features{models.FeatureMultiVehicle: true},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Radio Taxi Norte" {
		t.Errorf("Name = %q", created.Name)
	}
	if created.NameCI != "radio taxi norte" {
		t.Errorf("NameCI = %q", created.NameCI)
	}
	if created.Slug != "radio-taxi-norte" {
		t.Errorf("Slug = %q", created.Slug)
	}
	if !created.Features.Enabled(models.FeatureMultiVehicle) {
		t.Error("explicit flag should override default")
	}
	if len(created.Features) != len(models.KnownFeatures()) {
		t.Errorf("expected every known flag stored, got %v", created.Features)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Organization{Name: "Taxi Sur"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Organization{Name: "TAXI SUR"})
	if !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		t.Errorf("expected ErrDuplicateOrganization, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, organizationstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_MergeFeatures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Flags Org")

	updated, err := store.MergeFeatures(ctx, org.ID, models.Features{models.FeatureExportPDF: false})
	if err != nil {
		t.Fatalf("MergeFeatures failed: %v", err)
	}
	if updated.Features.Enabled(models.FeatureExportPDF) {
		t.Error("export_pdf should be disabled")
	}
	if !updated.Features.Enabled(models.FeatureExportCSV) {
		t.Error("untouched flags must survive the merge")
	}
	if len(updated.Features) != len(org.Features) {
		t.Errorf("merge changed the flag count: %d -> %d", len(org.Features), len(updated.Features))
	}

	_, err = store.MergeFeatures(ctx, primitive.NewObjectID(), models.Features{models.FeatureExportPDF: true})
	if !errors.Is(err, organizationstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Old Name")
	other := fixtures.CreateOrganization(ctx, "Taken Name")

	name := "New Name"
	updated, err := store.Update(ctx, org.ID, organizationstore.Update{
		Name:     &name,
		Branding: &models.Branding{PrimaryColor: "#112233"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.NameCI != "new name" || updated.Branding.PrimaryColor != "#112233" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	taken := other.Name
	_, err = store.Update(ctx, org.ID, organizationstore.Update{Name: &taken})
	if !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		t.Errorf("expected ErrDuplicateOrganization, got %v", err)
	}
}

func TestStore_ExistsAndActive_Cached(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mem := cache.NewMemory()
	store := organizationstore.New(db).WithCache(mem, time.Minute)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Cached Org")

	ok, err := store.IsActive(ctx, org.ID)
	if err != nil || !ok {
		t.Fatalf("IsActive = %v, %v", ok, err)
	}
	if mem.Len() != 1 {
		t.Errorf("expected one cached entry, got %d", mem.Len())
	}

	inactive := false
	if _, err := store.Update(ctx, org.ID, organizationstore.Update{Active: &inactive}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	ok, err = store.IsActive(ctx, org.ID)
	if err != nil || ok {
		t.Errorf("IsActive after deactivation = %v, %v", ok, err)
	}
	exists, err := store.OrganizationExists(ctx, org.ID)
	if err != nil || !exists {
		t.Errorf("OrganizationExists = %v, %v", exists, err)
	}

	exists, err = store.OrganizationExists(ctx, primitive.NewObjectID())
	if err != nil || exists {
		t.Errorf("OrganizationExists(unknown) = %v, %v", exists, err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	busy := fixtures.CreateOrganization(ctx, "Busy Org")
	fixtures.CreateVehicle(ctx, busy.ID, "1234ABC")
	if err := store.Delete(ctx, busy.ID); !errors.Is(err, organizationstore.ErrHasDependents) {
		t.Errorf("expected ErrHasDependents, got %v", err)
	}

	empty := fixtures.CreateOrganization(ctx, "Empty Org")
	if err := store.Delete(ctx, empty.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	n, _ := db.Collection("organizations").CountDocuments(ctx, bson.M{"_id": empty.ID})
	if n != 0 {
		t.Error("organization should be gone")
	}
	if err := store.Delete(ctx, empty.ID); !errors.Is(err, organizationstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Alfa Taxi", "Beta Taxi", "Gamma Cabs"} {
		fixtures.CreateOrganization(ctx, name)
	}

	page, err := store.List(ctx, organizationstore.ListFilter{}, paging.Params{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].Name != "Alfa Taxi" || page.NextCursor == "" {
		t.Fatalf("unexpected first page: %+v", page)
	}

	page, err = store.List(ctx, organizationstore.ListFilter{}, paging.Params{Limit: 2, After: page.NextCursor})
	if err != nil {
		t.Fatalf("List page 2 failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Gamma Cabs" || page.NextCursor != "" {
		t.Fatalf("unexpected second page: %+v", page)
	}

	page, err = store.List(ctx, organizationstore.ListFilter{Q: "be"}, paging.Params{})
	if err != nil {
		t.Fatalf("List with q failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Beta Taxi" {
		t.Errorf("prefix search returned %+v", page.Items)
	}
}
