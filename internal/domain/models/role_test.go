package models_test

import (
	"encoding/json"
	"testing"

	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Role
		wantErr bool
	}{
		{"superadmin", models.RoleSuperadmin, false},
		{"Admin", models.RoleAdmin, false},
		{"  taxista ", models.RoleTaxista, false},
		{"driver", models.RoleUnknown, true},
		{"", models.RoleUnknown, true},
	}
	for _, tt := range tests {
		got, err := models.ParseRole(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRole(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRole_RequiresOrganization(t *testing.T) {
	if models.RoleSuperadmin.RequiresOrganization() {
		t.Error("superadmin must not require an organization")
	}
	if !models.RoleAdmin.RequiresOrganization() || !models.RoleTaxista.RequiresOrganization() {
		t.Error("admin and taxista must require an organization")
	}
}

func TestRole_JSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(struct {
		Role models.Role `json:"role"`
	}{models.RoleTaxista})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"role":"taxista"}` {
		t.Fatalf("got %s", b)
	}

	var out struct {
		Role models.Role `json:"role"`
	}
	if err := json.Unmarshal([]byte(`{"role":"nobody"}`), &out); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestRole_BSONStoresName(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"role": models.RoleAdmin})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := bson.Raw(raw).Lookup("role").StringValue(); got != "admin" {
		t.Fatalf("stored role = %q, want admin", got)
	}

	var out struct {
		Role models.Role `bson:"role"`
	}
	raw, _ = bson.Marshal(bson.M{"role": "bogus"})
	if err := bson.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Role != models.RoleUnknown {
		t.Errorf("unknown stored role decoded as %v", out.Role)
	}
}

func TestFeatures_Defaults(t *testing.T) {
	f := models.DefaultFeatures()
	for _, k := range models.KnownFeatures() {
		if _, ok := f[k]; !ok {
			t.Errorf("default features missing %q", k)
		}
	}
	f[models.FeatureCompanies] = false
	if models.DefaultFeatures()[models.FeatureCompanies] != true {
		t.Error("DefaultFeatures must return a fresh copy")
	}
	if models.IsKnownFeature("teleport") {
		t.Error("unknown flag reported as known")
	}
	if !(models.Features{}).Enabled(models.FeatureOfflineSync) {
		t.Error("unset flag should fall back to its default")
	}
	if !(models.Features{}).Enabled(models.FeatureLiquidations) {
		t.Error("liquidation should be available unless switched off")
	}
}
