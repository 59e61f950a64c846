// internal/app/store/users/fetcher.go
package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrgStatus reports whether an organization is active.
type OrgStatus interface {
	IsActive(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Fetcher implements auth.PrincipalLoader, loading fresh user data on each
// request so role, organization and active changes apply immediately.
type Fetcher struct {
	users *mongo.Collection
	orgs  OrgStatus
}

// NewFetcher creates a PrincipalLoader that queries the given database.
func NewFetcher(db *mongo.Database, orgs OrgStatus) *Fetcher {
	return &Fetcher{users: db.Collection("users"), orgs: orgs}
}

// LoadPrincipal returns nil for unknown or inactive users, tenant users
// without an organization, and users of inactive organizations.
func (f *Fetcher) LoadPrincipal(ctx context.Context, userID primitive.ObjectID) (*auth.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":             1,
		"username":        1,
		"full_name":       1,
		"role":            1,
		"active":          1,
		"organization_id": 1,
	})
	err := f.users.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ok, err := CanSignIn(ctx, u, f.orgs); err != nil || !ok {
		return nil, err
	}
	return &auth.Principal{
		UserID:         u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
	}, nil
}

// CanSignIn applies the login rules shared by token issuance and
// per-request reloading.
func CanSignIn(ctx context.Context, u models.User, orgs OrgStatus) (bool, error) {
	if !u.Active || !u.Role.Valid() {
		return false, nil
	}
	if !u.Role.RequiresOrganization() {
		return true, nil
	}
	if u.OrganizationID == nil {
		return false, nil
	}
	return orgs.IsActive(ctx, *u.OrganizationID)
}
