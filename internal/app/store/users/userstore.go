// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/normalize"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateUsername = apperr.Validation("username already exists")
	ErrNotFound          = apperr.NotFound("user not found")
	ErrOrgRequired       = apperr.Validation("organization_id is required for admin and taxista users")
	ErrSuperadminOrg     = apperr.Validation("superadmin users cannot belong to an organization")
	ErrInvalidRole       = apperr.Validation("role must be one of: superadmin, admin, taxista")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// checkTenancy enforces that only superadmins live outside an organization.
func checkTenancy(role models.Role, org *primitive.ObjectID) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if role.RequiresOrganization() && (org == nil || org.IsZero()) {
		return ErrOrgRequired
	}
	if !role.RequiresOrganization() && org != nil {
		return ErrSuperadminOrg
	}
	return nil
}

// Create inserts u. PasswordHash must already be set.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if err := checkTenancy(u.Role, u.OrganizationID); err != nil {
		return models.User{}, err
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = normalize.Fold(u.Username)
	u.FullName = normalize.Name(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user visible in scope.
func (s *Store) GetByID(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, scope.Filter(bson.M{"_id": id})).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByUsername looks up a login name case-insensitively.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"username_ci": normalize.Fold(username)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// ListFilter narrows List. A nil Role lists every role.
type ListFilter struct {
	Role   *models.Role
	Q      string
	Active *bool
	// OnlyID restricts the list to one user (taxistas listing themselves).
	OnlyID *primitive.ObjectID
}

// List pages through users in scope ordered by folded username.
func (s *Store) List(ctx context.Context, scope tenant.Scope, f ListFilter, p paging.Params) (paging.Page[models.User], error) {
	filter := scope.Filter(bson.M{})
	if f.Role != nil {
		filter["role"] = *f.Role
	}
	if q := normalize.Fold(f.Q); q != "" {
		filter["username_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q)}
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}
	if f.OnlyID != nil {
		filter["_id"] = *f.OnlyID
	}
	cfg := p.Configure()
	cur, err := s.c.Find(ctx, cfg.Apply(filter, "username_ci"), cfg.FindOptions("username_ci"))
	if err != nil {
		return paging.Page[models.User]{}, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return paging.Page[models.User]{}, err
	}
	return paging.Finish(cfg, users,
		func(u models.User) string { return u.UsernameCI },
		func(u models.User) primitive.ObjectID { return u.ID },
	), nil
}

// Update holds the mutable fields; nil fields are left unchanged.
type Update struct {
	FullName      *string
	Email         *string
	Phone         *string
	LicenseNumber *string
	Role          *models.Role
	Active        *bool
	PasswordHash  *string
}

// Update applies u to the user in scope. A role change is checked against
// the user's stored organization.
func (s *Store) Update(ctx context.Context, scope tenant.Scope, id primitive.ObjectID, u Update) (models.User, error) {
	current, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return models.User{}, err
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.FullName != nil {
		set["full_name"] = normalize.Name(*u.FullName)
	}
	if u.Email != nil {
		set["email"] = normalize.Email(*u.Email)
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.LicenseNumber != nil {
		set["license_number"] = *u.LicenseNumber
	}
	if u.Role != nil {
		if err := checkTenancy(*u.Role, current.OrganizationID); err != nil {
			return models.User{}, err
		}
		set["role"] = *u.Role
	}
	if u.Active != nil {
		set["active"] = *u.Active
	}
	if u.PasswordHash != nil {
		set["password_hash"] = *u.PasswordHash
	}

	var out models.User
	err = s.c.FindOneAndUpdate(ctx, scope.Filter(bson.M{"_id": id}), bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return out, nil
}

// Delete removes the user in scope.
func (s *Store) Delete(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, scope.Filter(bson.M{"_id": id}))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSuperadmins counts superadmin accounts; startup uses it to decide
// whether to bootstrap one.
func (s *Store) CountSuperadmins(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": models.RoleSuperadmin})
}
