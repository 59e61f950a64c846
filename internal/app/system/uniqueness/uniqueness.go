// internal/app/system/uniqueness/uniqueness.go
// Package uniqueness enforces business keys that are unique within an
// organization. A scoped pre-check gives the friendly answer; the compound
// unique index is authoritative and its duplicate-key error is translated
// into the same answer.
package uniqueness

import (
	"context"
	"errors"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/metrics"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Constraint is one (organization_id, field) uniqueness rule. Index is the
// name of the backing unique index.
type Constraint struct {
	Index string
	Field string
	err   *apperr.Error
}

func newConstraint(index, field, msg string) Constraint {
	return Constraint{Index: index, Field: field, err: apperr.Validation(msg)}
}

var (
	VehiclePlate        = newConstraint("uniq_vehicles_org_matricula", "matricula", "plate already exists in your organization")
	CompanyClientNumber = newConstraint("uniq_companies_org_numero_cliente", "numero_cliente", "client number already exists in your organization")
	OpenTurno           = newConstraint("uniq_turnos_org_taxista_open", "taxista_id", "taxista already has an open shift")
)

// Err is the validation error reported for a violation.
func (k Constraint) Err() error { return k.err }

// Check reports a violation when another record in org already holds
// value. exclude skips the record being updated; pass NilObjectID on create.
func (k Constraint) Check(ctx context.Context, c *mongo.Collection, org primitive.ObjectID, value any, exclude primitive.ObjectID) error {
	filter := bson.M{"organization_id": org, k.Field: value}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	err := c.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return err
	}
	return k.err
}

// Translate maps a duplicate-key error from the storage layer onto the
// constraint's validation error. Other errors pass through unchanged.
func (k Constraint) Translate(err error) error {
	if err == nil || !wafflemongo.IsDup(err) {
		return err
	}
	metrics.DuplicateKeyRecovered(k.Index)
	return k.err
}
