// internal/app/store/services/servicestore.go
package servicestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/idempotency"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = apperr.NotFound("service not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("services")}
}

// Insert implements idempotency.Store. A duplicate (organization_id,
// client_uuid) surfaces as idempotency.ErrDuplicateKey.
func (s *Store) Insert(ctx context.Context, svc models.Service) (models.Service, error) {
	now := time.Now().UTC()
	if svc.ID.IsZero() {
		svc.ID = primitive.NewObjectID()
	}
	svc.CreatedAt = now
	svc.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, svc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Service{}, idempotency.ErrDuplicateKey
		}
		return models.Service{}, err
	}
	return svc, nil
}

// FindByClientUUID implements idempotency.Store.
func (s *Store) FindByClientUUID(ctx context.Context, org primitive.ObjectID, key string) (*models.Service, error) {
	var svc models.Service
	err := s.c.FindOne(ctx, bson.M{"organization_id": org, "client_uuid": key}).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// GetByID loads a service visible in scope.
func (s *Store) GetByID(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) (models.Service, error) {
	var svc models.Service
	err := s.c.FindOne(ctx, scope.Filter(bson.M{"_id": id})).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Service{}, ErrNotFound
	}
	if err != nil {
		return models.Service{}, err
	}
	return svc, nil
}

// ListFilter narrows List. Reference filters must already be validated
// against the caller's scope. Dates are inclusive YYYY-MM-DD bounds.
type ListFilter struct {
	TaxistaID  *primitive.ObjectID
	VehiculoID *primitive.ObjectID
	EmpresaID  *primitive.ObjectID
	TurnoID    *primitive.ObjectID
	ClientUUID string
	Tipo       string
	FechaDesde string
	FechaHasta string
}

func (f ListFilter) apply(filter bson.M) bson.M {
	if f.TaxistaID != nil {
		filter["taxista_id"] = *f.TaxistaID
	}
	if f.VehiculoID != nil {
		filter["vehiculo_id"] = *f.VehiculoID
	}
	if f.EmpresaID != nil {
		filter["empresa_id"] = *f.EmpresaID
	}
	if f.TurnoID != nil {
		filter["turno_id"] = *f.TurnoID
	}
	if f.ClientUUID != "" {
		filter["client_uuid"] = f.ClientUUID
	}
	if f.Tipo != "" {
		filter["tipo"] = f.Tipo
	}
	if f.FechaDesde != "" || f.FechaHasta != "" {
		r := bson.M{}
		if f.FechaDesde != "" {
			r["$gte"] = f.FechaDesde
		}
		if f.FechaHasta != "" {
			r["$lte"] = f.FechaHasta
		}
		filter["fecha"] = r
	}
	return filter
}

// List pages through services in scope ordered by fecha.
func (s *Store) List(ctx context.Context, scope tenant.Scope, f ListFilter, p paging.Params) (paging.Page[models.Service], error) {
	filter := f.apply(scope.Filter(bson.M{}))
	cfg := p.Configure()
	cur, err := s.c.Find(ctx, cfg.Apply(filter, "fecha"), cfg.FindOptions("fecha"))
	if err != nil {
		return paging.Page[models.Service]{}, err
	}
	defer cur.Close(ctx)
	var out []models.Service
	if err := cur.All(ctx, &out); err != nil {
		return paging.Page[models.Service]{}, err
	}
	return paging.Finish(cfg, out,
		func(s models.Service) string { return s.Fecha },
		func(s models.Service) primitive.ObjectID { return s.ID },
	), nil
}

// Update holds the mutable fields; nil fields are left unchanged.
// client_uuid, organization, taxista and turno are never updated.
type Update struct {
	VehiculoID    *primitive.ObjectID
	EmpresaID     *primitive.ObjectID
	ClearEmpresa  bool
	Fecha         *string
	Hora          *string
	Origen        *string
	Destino       *string
	Importe       *float64
	ImporteEspera *float64
	Kilometros    *float64
	Tipo          *string
	FormaPago     *string
	Observaciones *string
}

// Update applies u to the service in scope.
func (s *Store) Update(ctx context.Context, scope tenant.Scope, id primitive.ObjectID, u Update) (models.Service, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.VehiculoID != nil {
		set["vehiculo_id"] = *u.VehiculoID
	}
	if u.EmpresaID != nil {
		set["empresa_id"] = *u.EmpresaID
	}
	if u.Fecha != nil {
		set["fecha"] = *u.Fecha
	}
	if u.Hora != nil {
		set["hora"] = *u.Hora
	}
	if u.Origen != nil {
		set["origen"] = *u.Origen
	}
	if u.Destino != nil {
		set["destino"] = *u.Destino
	}
	if u.Importe != nil {
		set["importe"] = *u.Importe
	}
	if u.ImporteEspera != nil {
		set["importe_espera"] = *u.ImporteEspera
	}
	if u.Kilometros != nil {
		set["kilometros"] = *u.Kilometros
	}
	if u.Tipo != nil {
		set["tipo"] = *u.Tipo
	}
	if u.FormaPago != nil {
		set["forma_pago"] = *u.FormaPago
	}
	if u.Observaciones != nil {
		set["observaciones"] = *u.Observaciones
	}
	update := bson.M{"$set": set}
	if u.ClearEmpresa && u.EmpresaID == nil {
		update["$unset"] = bson.M{"empresa_id": ""}
	}

	var out models.Service
	err := s.c.FindOneAndUpdate(ctx, scope.Filter(bson.M{"_id": id}), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Service{}, ErrNotFound
	}
	if err != nil {
		return models.Service{}, err
	}
	return out, nil
}

// Delete removes the service in scope.
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
