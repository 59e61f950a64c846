// internal/app/store/turnos/turnostore.go
package turnostore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/txn"
	"github.com/dalemusser/flotahub/internal/app/system/uniqueness"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = apperr.NotFound("turno not found")
	// ErrStale means the turno changed state between load and save.
	ErrStale = apperr.Validation("turno was modified concurrently; reload and retry")
)

type Store struct {
	c        *mongo.Collection
	services *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("turnos"), services: db.Collection("services")}
}

// Create opens t. The partial unique index on open turnos backs the
// one-open-shift rule; its violation maps to the same error as the
// pre-check.
func (s *Store) Create(ctx context.Context, t models.Turno) (models.Turno, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.Estado = models.TurnoOpen
	t.FechaFin, t.HoraFin, t.KmFin = nil, nil, nil
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Turno{}, uniqueness.OpenTurno.Translate(err)
	}
	return t, nil
}

// OpenFor lists the open turnos of taxista in org.
func (s *Store) OpenFor(ctx context.Context, org, taxista primitive.ObjectID) ([]models.Turno, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"organization_id": org,
		"taxista_id":      taxista,
		"estado":          models.TurnoOpen,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Turno
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a turno visible in scope.
func (s *Store) GetByID(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) (models.Turno, error) {
	var t models.Turno
	err := s.c.FindOne(ctx, scope.Filter(bson.M{"_id": id})).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Turno{}, ErrNotFound
	}
	if err != nil {
		return models.Turno{}, err
	}
	return t, nil
}

// ListFilter narrows List. Dates are inclusive YYYY-MM-DD bounds on
// fecha_inicio.
// EmpresaID keeps turnos holding at least one service billed to that
// company.
type ListFilter struct {
	TurnoID    *primitive.ObjectID
	TaxistaID  *primitive.ObjectID
	VehiculoID *primitive.ObjectID
	EmpresaID  *primitive.ObjectID
	Estado     models.TurnoState
	FechaDesde string
	FechaHasta string
}

// List pages through turnos in scope ordered by start date.
func (s *Store) List(ctx context.Context, scope tenant.Scope, f ListFilter, p paging.Params) (paging.Page[models.Turno], error) {
	filter := scope.Filter(bson.M{})
	if f.TurnoID != nil {
		filter["_id"] = *f.TurnoID
	}
	if f.EmpresaID != nil {
		ids, err := s.turnosBilledTo(ctx, scope, *f.EmpresaID)
		if err != nil {
			return paging.Page[models.Turno]{}, err
		}
		if f.TurnoID != nil {
			filter["_id"] = bson.M{"$in": ids, "$eq": *f.TurnoID}
		} else {
			filter["_id"] = bson.M{"$in": ids}
		}
	}
	if f.TaxistaID != nil {
		filter["taxista_id"] = *f.TaxistaID
	}
	if f.VehiculoID != nil {
		filter["vehiculo_id"] = *f.VehiculoID
	}
	if f.Estado != "" {
		filter["estado"] = f.Estado
	}
	if r := dateRange(f.FechaDesde, f.FechaHasta); r != nil {
		filter["fecha_inicio"] = r
	}
	cfg := p.Configure()
	cur, err := s.c.Find(ctx, cfg.Apply(filter, "fecha_inicio"), cfg.FindOptions("fecha_inicio"))
	if err != nil {
		return paging.Page[models.Turno]{}, err
	}
	defer cur.Close(ctx)
	var out []models.Turno
	if err := cur.All(ctx, &out); err != nil {
		return paging.Page[models.Turno]{}, err
	}
	return paging.Finish(cfg, out,
		func(t models.Turno) string { return t.FechaInicio },
		func(t models.Turno) primitive.ObjectID { return t.ID },
	), nil
}

// turnosBilledTo returns the ids of turnos in scope with a service for
// empresa.
func (s *Store) turnosBilledTo(ctx context.Context, scope tenant.Scope, empresa primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Database().Collection("services").Distinct(ctx, "turno_id",
		scope.Filter(bson.M{"empresa_id": empresa, "turno_id": bson.M{"$ne": nil}}))
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func dateRange(from, to string) bson.M {
	if from == "" && to == "" {
		return nil
	}
	r := bson.M{}
	if from != "" {
		r["$gte"] = from
	}
	if to != "" {
		r["$lte"] = to
	}
	return r
}

// SaveTransition persists a state change made by turnostate. The write
// only applies while the stored state is still from.
func (s *Store) SaveTransition(ctx context.Context, t models.Turno, from models.TurnoState) error {
	set := bson.M{
		"estado":     t.Estado,
		"updated_at": t.UpdatedAt,
	}
	if t.FechaFin != nil {
		set["fecha_fin"] = *t.FechaFin
	}
	if t.HoraFin != nil {
		set["hora_fin"] = *t.HoraFin
	}
	if t.KmFin != nil {
		set["km_fin"] = *t.KmFin
	}
	if t.LiquidatedAt != nil {
		set["liquidated_at"] = *t.LiquidatedAt
	}
	if t.LiquidatedBy != nil {
		set["liquidated_by"] = *t.LiquidatedBy
	}
	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id":             t.ID,
		"organization_id": t.OrganizationID,
		"estado":          from,
	}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}

// Summary is the service aggregate of one turno.
type Summary struct {
	Services int64   `json:"services"`
	Total    float64 `json:"total"`
}

// Summarize counts the turno's services and sums importe plus
// importe_espera.
func (s *Store) Summarize(ctx context.Context, org, id primitive.ObjectID) (Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"organization_id": org, "turno_id": id}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": bson.M{"$add": bson.A{"$importe", "$importe_espera"}}},
		}}},
	}
	cur, err := s.services.Aggregate(ctx, pipeline)
	if err != nil {
		return Summary{}, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		Count int64   `bson:"count"`
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return Summary{}, err
	}
	if len(rows) == 0 {
		return Summary{}, nil
	}
	return Summary{Services: rows[0].Count, Total: rows[0].Total}, nil
}

// DeleteCascade removes the turno in scope and every service attached to
// it, returning the number of services removed. Both deletes share a
// transaction where the server supports one; otherwise services go first so
// a failure never leaves services pointing at a missing turno.
func (s *Store) DeleteCascade(ctx context.Context, scope tenant.Scope, id primitive.ObjectID) (int64, error) {
	t, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return 0, err
	}
	var removed int64
	err = txn.Run(ctx, s.c.Database().Client(), func(ctx context.Context) error {
		res, err := s.services.DeleteMany(ctx, bson.M{"organization_id": t.OrganizationID, "turno_id": t.ID})
		if err != nil {
			return err
		}
		removed = res.DeletedCount
		_, err = s.c.DeleteOne(ctx, bson.M{"_id": t.ID, "organization_id": t.OrganizationID})
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
