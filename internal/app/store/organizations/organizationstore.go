// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/cache"
	"github.com/dalemusser/flotahub/internal/app/system/normalize"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateOrganization = apperr.Validation("an organization with this name already exists")
	ErrNotFound              = apperr.NotFound("organization not found")
	ErrHasDependents         = apperr.Validation("organization still has users, vehicles, companies, turnos or services")
)

// dependents are the collections whose documents pin an organization.
var dependents = []string{"users", "vehicles", "companies", "turnos", "services"}

const cacheResource = "organizations"

// Cached organization states.
const (
	stateMissing  byte = '0'
	stateInactive byte = '1'
	stateActive   byte = '2'
)

type Store struct {
	db    *mongo.Database
	c     *mongo.Collection
	cache cache.Cache
	ttl   time.Duration
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, c: db.Collection("organizations"), cache: cache.Nop{}}
}

// WithCache memoizes existence and active lookups for ttl.
func (s *Store) WithCache(c cache.Cache, ttl time.Duration) *Store {
	if c == nil {
		c = cache.Nop{}
	}
	s.cache = c
	s.ttl = ttl
	return s
}

func cacheKey(id primitive.ObjectID) cache.Key {
	return cache.Key{Resource: cacheResource, ID: id.Hex()}
}

func (s *Store) invalidate(ctx context.Context, id primitive.ObjectID) {
	_ = s.cache.Delete(ctx, cacheKey(id))
}

// Create inserts org with a fresh ID, folded name, derived slug and the
// default feature flags merged under any flags already set.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.Name = normalize.Name(org.Name)
	org.NameCI = normalize.Fold(org.Name)
	if org.Slug == "" {
		org.Slug = normalize.Slug(org.Name)
	}
	features := models.DefaultFeatures()
	for k, v := range org.Features {
		features[k] = v
	}
	org.Features = features
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	s.invalidate(ctx, org.ID)
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Organization{}, ErrNotFound
	}
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) state(ctx context.Context, id primitive.ObjectID) (byte, error) {
	if b, err := s.cache.Get(ctx, cacheKey(id)); err == nil && len(b) == 1 {
		return b[0], nil
	}
	var doc struct {
		Active bool `bson:"active"`
	}
	err := s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"active": 1})).Decode(&doc)
	st := stateActive
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		st = stateMissing
	case err != nil:
		return 0, err
	case !doc.Active:
		st = stateInactive
	}
	_ = s.cache.Set(ctx, cacheKey(id), []byte{st}, s.ttl)
	return st, nil
}

// OrganizationExists reports whether id names an organization, active or not.
func (s *Store) OrganizationExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	st, err := s.state(ctx, id)
	return st != stateMissing, err
}

// IsActive reports whether id names an active organization.
func (s *Store) IsActive(ctx context.Context, id primitive.ObjectID) (bool, error) {
	st, err := s.state(ctx, id)
	return st == stateActive, err
}

// ListFilter narrows List.
type ListFilter struct {
	Q      string
	Active *bool
}

// List pages through organizations ordered by folded name.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) (paging.Page[models.Organization], error) {
	filter := bson.M{}
	if q := normalize.Fold(f.Q); q != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q)}
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}
	cfg := p.Configure()
	cur, err := s.c.Find(ctx, cfg.Apply(filter, "name_ci"), cfg.FindOptions("name_ci"))
	if err != nil {
		return paging.Page[models.Organization]{}, err
	}
	defer cur.Close(ctx)
	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return paging.Page[models.Organization]{}, err
	}
	return paging.Finish(cfg, orgs,
		func(o models.Organization) string { return o.NameCI },
		func(o models.Organization) primitive.ObjectID { return o.ID },
	), nil
}

// Update holds the mutable fields; nil fields are left unchanged.
type Update struct {
	Name     *string
	CIF      *string
	Address  *string
	Email    *string
	Phone    *string
	Branding *models.Branding
	Active   *bool
}

// Update applies u and returns the stored organization.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Organization, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		name := normalize.Name(*u.Name)
		set["name"] = name
		set["name_ci"] = normalize.Fold(name)
	}
	if u.CIF != nil {
		set["cif"] = *u.CIF
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.Email != nil {
		set["email"] = normalize.Email(*u.Email)
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Branding != nil {
		set["branding"] = *u.Branding
	}
	if u.Active != nil {
		set["active"] = *u.Active
	}
	return s.findAndSet(ctx, id, set)
}

// MergeFeatures sets each flag in features individually, leaving every
// other stored flag untouched.
func (s *Store) MergeFeatures(ctx context.Context, id primitive.ObjectID, features models.Features) (models.Organization, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range features {
		set["features."+k] = v
	}
	return s.findAndSet(ctx, id, set)
}

func (s *Store) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Organization{}, ErrNotFound
	}
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	s.invalidate(ctx, id)
	return org, nil
}

// Delete removes an organization that owns no data.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	for _, coll := range dependents {
		n, err := s.db.Collection(coll).CountDocuments(ctx, bson.M{"organization_id": id}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrHasDependents
		}
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
