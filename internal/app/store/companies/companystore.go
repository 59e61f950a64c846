// internal/app/store/companies/companystore.go
package companystore

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
	ErrNotFound      = apperr.NotFound("company not found")
	ErrNumberMissing = apperr.Validation("numero_cliente is required")
	ErrNameMissing   = apperr.Validation("nombre is required")
	ErrInUse         = apperr.Validation("company is referenced by services and cannot be deleted")
)

const cacheResource = "companies"

type Store struct {
	c        *mongo.Collection
	services *mongo.Collection
	cache    cache.Cache
	ttl      time.Duration
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("companies"),
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

// Create stores c in org. The client number must be unique within org.
func (s *Store) Create(ctx context.Context, org primitive.ObjectID, c models.Company) (models.Company, error) {
	c.NumeroCliente = normalize.ClientNumber(c.NumeroCliente)
	c.Nombre = normalize.Name(c.Nombre)
	if c.NumeroCliente == "" {
		return models.Company{}, ErrNumberMissing
	}
	if c.Nombre == "" {
		return models.Company{}, ErrNameMissing
	}
	if err := uniqueness.CompanyClientNumber.Check(ctx, s.c, org, c.NumeroCliente, primitive.NilObjectID); err != nil {
		return models.Company{}, err
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.OrganizationID = org
	c.NombreCI = normalize.Fold(c.Nombre)
	c.Email = normalize.Email(c.Email)
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Company{}, uniqueness.CompanyClientNumber.Translate(err)
	}
	return c, nil
}

// GetByID loads a company visible in scope.
func (s *Store) GetByID(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) (models.Company, error) {
	org, scoped := scope.OrgID()
	if scoped {
		if b, err := s.cache.Get(ctx, cacheKey(org, id)); err == nil {
			var c models.Company
			if json.Unmarshal(b, &c) == nil {
				return c, nil
			}
		}
	}
	var c models.Company
	err := s.c.FindOne(ctx, scope.Filter(bson.M{"_id": id})).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Company{}, ErrNotFound
	}
	if err != nil {
		return models.Company{}, err
	}
	if scoped {
		if b, err := json.Marshal(c); err == nil {
			_ = s.cache.Set(ctx, cacheKey(org, id), b, s.ttl)
		}
	}
	return c, nil
}

// ListFilter narrows List.
type ListFilter struct {
	Q      string
	Active *bool
}

// List pages through companies in scope ordered by folded name. Q matches
// a name prefix or an exact client number.
func (s *Store) List(ctx context.Context, scope tenant.Scope, f ListFilter, p paging.Params) (paging.Page[models.Company], error) {
	filter := scope.Filter(bson.M{})
	if q := normalize.Fold(f.Q); q != "" {
		filter["$or"] = bson.A{
			bson.M{"nombre_ci": bson.M{"$regex": "^" + regexp.QuoteMeta(q)}},
			bson.M{"numero_cliente": normalize.ClientNumber(f.Q)},
		}
	}
	if f.Active != nil {
		filter["active"] = *f.Active
	}
	cfg := p.Configure()
	cur, err := s.c.Find(ctx, cfg.Apply(filter, "nombre_ci"), cfg.FindOptions("nombre_ci"))
	if err != nil {
		return paging.Page[models.Company]{}, err
	}
	defer cur.Close(ctx)
	var out []models.Company
	if err := cur.All(ctx, &out); err != nil {
		return paging.Page[models.Company]{}, err
	}
	return paging.Finish(cfg, out,
		func(c models.Company) string { return c.NombreCI },
		func(c models.Company) primitive.ObjectID { return c.ID },
	), nil
}

// Update holds the mutable fields; nil fields are left unchanged.
type Update struct {
	NumeroCliente *string
	Nombre        *string
	CIF           *string
	Direccion     *string
	Email         *string
	Telefono      *string
	Active        *bool
}

// Update applies u to the company in scope.
func (s *Store) Update(ctx context.Context, scope tenant.Scope, id primitive.ObjectID, u Update) (models.Company, error) {
	current, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return models.Company{}, err
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.NumeroCliente != nil {
		num := normalize.ClientNumber(*u.NumeroCliente)
		if num == "" {
			return models.Company{}, ErrNumberMissing
		}
		if err := uniqueness.CompanyClientNumber.Check(ctx, s.c, current.OrganizationID, num, id); err != nil {
			return models.Company{}, err
		}
		set["numero_cliente"] = num
	}
	if u.Nombre != nil {
		name := normalize.Name(*u.Nombre)
		if name == "" {
			return models.Company{}, ErrNameMissing
		}
		set["nombre"] = name
		set["nombre_ci"] = normalize.Fold(name)
	}
	if u.CIF != nil {
		set["cif"] = *u.CIF
	}
	if u.Direccion != nil {
		set["direccion"] = *u.Direccion
	}
	if u.Email != nil {
		set["email"] = normalize.Email(*u.Email)
	}
	if u.Telefono != nil {
		set["telefono"] = *u.Telefono
	}
	if u.Active != nil {
		set["active"] = *u.Active
	}

	var out models.Company
	err = s.c.FindOneAndUpdate(ctx, scope.Filter(bson.M{"_id": id}), bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	_ = s.cache.Delete(ctx, cacheKey(current.OrganizationID, id))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Company{}, ErrNotFound
	}
	if err != nil {
		return models.Company{}, uniqueness.CompanyClientNumber.Translate(err)
	}
	return out, nil
}

// Delete removes a company in scope that no service references.
func (s *Store) Delete(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) error {
	current, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	n, err := s.services.CountDocuments(ctx,
		bson.M{"organization_id": current.OrganizationID, "empresa_id": id},
		options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
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
