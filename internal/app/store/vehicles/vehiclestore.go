// internal/app/store/vehicles/vehiclestore.go
package vehiclestore

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/cache"
	"github.com/dalemusser/flotahub/internal/app/system/normalize"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/uniqueness"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound     = apperr.NotFound("vehicle not found")
	ErrPlateMissing = apperr.Validation("matricula is required")
	ErrInUse        = apperr.Validation("vehicle is referenced by turnos or services and cannot be deleted")
)

const cacheResource = "vehicles"

type Store struct {
	c        *mongo.Collection
	turnos   *mongo.Collection
	services *mongo.Collection
	cache    cache.Cache
	ttl      time.Duration
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("vehicles"),
		turnos:   db.Collection("turnos"),
		services: db.Collection("services"),
		cache:    cache.Nop{},
	}
}

// WithCache memoizes GetByID per organization for ttl.
func (s *Store) WithCache(c cache.Cache, ttl time.Duration) *Store {
	if c == nil {
		c = cache.Nop{}
	}
	s.cache = c
	s.ttl = ttl
	return s
}

func cacheKey(org, id primitive.ObjectID) cache.Key {
	return cache.Key{OrgID: org, Resource: cacheResource, ID: id.Hex()}
}

// Create stores v in org. The plate is normalized and must be unique
// within org.
func (s *Store) Create(ctx context.Context, org primitive.ObjectID, v models.Vehicle) (models.Vehicle, error) {
	v.Matricula = normalize.Plate(v.Matricula)
	if v.Matricula == "" {
		return models.Vehicle{}, ErrPlateMissing
	}
	if err := uniqueness.VehiclePlate.Check(ctx, s.c, org, v.Matricula, primitive.NilObjectID); err != nil {
		return models.Vehicle{}, err
	}
	now := time.Now().UTC()
	v.ID = primitive.NewObjectID()
	v.OrganizationID = org
	v.CreatedAt = now
	v.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return models.Vehicle{}, uniqueness.VehiclePlate.Translate(err)
	}
	return v, nil
}

// GetByID loads a vehicle visible in scope.
func (s *Store) GetByID(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) (models.Vehicle, error) {
	org, scoped := scope.OrgID()
	if scoped {
		if b, err := s.cache.Get(ctx, cacheKey(org, id)); err == nil {
			var v models.Vehicle
			if json.Unmarshal(b, &v) == nil {
				return v, nil
			}
		}
	}
	var v models.Vehicle
	err := s.c.FindOne(ctx, scope.Filter(bson.M{"_id": id})).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Vehicle{}, ErrNotFound
	}
	if err != nil {
		return models.Vehicle{}, err
	}
	if scoped {
		if b, err := json.Marshal(v); err == nil {
			_ = s.cache.Set(ctx, cacheKey(org, id), b, s.ttl)
		}
	}
	return v, nil
}

// ListFilter narrows List.
type ListFilter struct {
	Q      string
	Active *bool
}

// List pages through vehicles in scope ordered by plate. Q matches a
// plate prefix.
func (s *Store) List(ctx context.Context, scope tenant.Scope, f ListFilter, p paging.Params) (paging.Page[models.Vehicle], error) {
	filter := scope.Filter(bson.M{})
	if q := normalize.Plate(f.Q); q != "" {
		filter["matricula"] = bson.M{"$regex": "^" + regexp.QuoteMeta(q)}
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}
	cfg := p.Configure()
	cur, err := s.c.Find(ctx, cfg.Apply(filter, "matricula"), cfg.FindOptions("matricula"))
	if err != nil {
		return paging.Page[models.Vehicle]{}, err
	}
	defer cur.Close(ctx)
	var out []models.Vehicle
	if err := cur.All(ctx, &out); err != nil {
		return paging.Page[models.Vehicle]{}, err
	}
	return paging.Finish(cfg, out,
		func(v models.Vehicle) string { return v.Matricula },
		func(v models.Vehicle) primitive.ObjectID { return v.ID },
	), nil
}

// Update holds the mutable fields; nil fields are left unchanged.
type Update struct {
	Matricula *string
	Marca     *string
	Modelo    *string
	Licencia  *string
	Plazas    *int
	Active    *bool
}

// Update applies u to the vehicle in scope. A changed plate is re-checked
// for uniqueness within the vehicle's organization.
func (s *Store) Update(ctx context.Context, scope tenant.Scope, id primitive.ObjectID, u Update) (models.Vehicle, error) {
	current, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return models.Vehicle{}, err
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Matricula != nil {
		plate := normalize.Plate(*u.Matricula)
		if plate == "" {
			return models.Vehicle{}, ErrPlateMissing
		}
		if err := uniqueness.VehiclePlate.Check(ctx, s.c, current.OrganizationID, plate, id); err != nil {
			return models.Vehicle{}, err
		}
		set["matricula"] = plate
	}
	if u.Marca != nil {
		set["marca"] = *u.Marca
	}
	if u.Modelo != nil {
		set["modelo"] = *u.Modelo
	}
	if u.Licencia != nil {
		set["licencia"] = *u.Licencia
	}
	if u.Plazas != nil {
		set["plazas"] = *u.Plazas
	}
	if u.Active != nil {
		set["active"] = *u.Active
	}

	var out models.Vehicle
	err = s.c.FindOneAndUpdate(ctx, scope.Filter(bson.M{"_id": id}), bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	_ = s.cache.Delete(ctx, cacheKey(current.OrganizationID, id))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Vehicle{}, ErrNotFound
	}
	if err != nil {
		return models.Vehicle{}, uniqueness.VehiclePlate.Translate(err)
	}
	return out, nil
}

// Delete removes a vehicle in scope that no turno or service references.
func (s *Store) Delete(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) error {
	current, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	ref := bson.M{"organization_id": current.OrganizationID, "vehiculo_id": id}
	for _, c := range []*mongo.Collection{s.turnos, s.services} {
		n, err := c.CountDocuments(ctx, ref, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
	}
	res, err := s.c.DeleteOne(ctx, scope.Filter(bson.M{"_id": id}))
	_ = s.cache.Delete(ctx, cacheKey(current.OrganizationID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
