// internal/app/system/refcheck/refcheck.go
// Package refcheck validates that foreign references carried by payloads
// and filters resolve to records of the caller's organization. The same
// predicate backs the offline integrity auditor.
package refcheck

import (
	"context"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind names a reference field.
type Kind string

const (
	Taxista  Kind = "taxista_id"
	Vehiculo Kind = "vehiculo_id"
	Empresa  Kind = "empresa_id"
	Turno    Kind = "turno_id"
)

// Kinds lists every reference kind in a stable order.
func Kinds() []Kind { return []Kind{Taxista, Vehiculo, Empresa, Turno} }

// ErrReference is the single answer for malformed, missing and foreign
// references. Callers must not learn which of the three it was.
var ErrReference = apperr.Validation("reference not found or does not belong to your organization")

// Owner locates the organization that owns a referenced record. found is
// false when the record does not exist or is not of the referenced kind.
type Owner interface {
	OwnerOf(ctx context.Context, kind Kind, id primitive.ObjectID) (org primitive.ObjectID, found bool, err error)
}

// Validator checks references against an Owner.
type Validator struct {
	owner Owner
}

// New constructs a Validator.
func New(owner Owner) *Validator {
	return &Validator{owner: owner}
}

// Belongs is the reference-validity predicate: id must name an existing
// record of kind owned by org.
func (v *Validator) Belongs(ctx context.Context, org primitive.ObjectID, kind Kind, id primitive.ObjectID) (bool, error) {
	owner, found, err := v.owner.OwnerOf(ctx, kind, id)
	if err != nil {
		return false, err
	}
	return found && owner == org, nil
}

// Exists reports whether id names a record of kind in any organization.
func (v *Validator) Exists(ctx context.Context, kind Kind, id primitive.ObjectID) (bool, error) {
	_, found, err := v.owner.OwnerOf(ctx, kind, id)
	return found, err
}

// Check parses raw and validates it within scope. Unscoped callers only
// need the record to exist.
func (v *Validator) Check(ctx context.Context, scope tenant.Scope, kind Kind, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, ErrReference
	}
	if err := v.CheckID(ctx, scope, kind, id); err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

// CheckID validates an already parsed reference within scope.
func (v *Validator) CheckID(ctx context.Context, scope tenant.Scope, kind Kind, id primitive.ObjectID) error {
	var ok bool
	var err error
	if org, scoped := scope.OrgID(); scoped {
		ok, err = v.Belongs(ctx, org, kind, id)
	} else {
		ok, err = v.Exists(ctx, kind, id)
	}
	if err != nil {
		return apperr.Internal("check "+string(kind), err)
	}
	if !ok {
		return ErrReference
	}
	return nil
}

// CheckOptional validates raw when present and returns nil when it is
// empty.
func (v *Validator) CheckOptional(ctx context.Context, scope tenant.Scope, kind Kind, raw *string) (*primitive.ObjectID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := v.Check(ctx, scope, kind, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
