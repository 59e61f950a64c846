// internal/app/system/tenant/tenant.go
// Package tenant derives the organization scope of a request from the
// authenticated principal and applies it to queries and writes.
package tenant

import (
	"context"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field is the tenant field carried by every scoped document.
const Field = "organization_id"

var (
	ErrSpoofedOrganization = apperr.Forbidden("cannot access another organization")
	ErrNoOrganization      = apperr.Forbidden("user is not assigned to an organization")
	ErrOrganizationMissing = apperr.NotFound("organization not found")
	ErrInvalidOrganization = apperr.Validation("invalid organization_id")
	ErrTargetRequired      = apperr.Validation("organization_id is required")
)

// Scope is either unscoped (superadmin, global) or scoped to one
// organization. The zero value is unscoped.
type Scope struct {
	org    primitive.ObjectID
	scoped bool
}

// Unscoped is the global scope.
func Unscoped() Scope { return Scope{} }

// ScopedTo limits every query to org.
func ScopedTo(org primitive.ObjectID) Scope { return Scope{org: org, scoped: true} }

// IsUnscoped reports whether s sees all organizations.
func (s Scope) IsUnscoped() bool { return !s.scoped }

// OrgID returns the scoped organization.
func (s Scope) OrgID() (primitive.ObjectID, bool) { return s.org, s.scoped }

// Filter conjuncts the tenant condition into f. A nil f is allowed.
func (s Scope) Filter(f bson.M) bson.M {
	if f == nil {
		f = bson.M{}
	}
	if s.scoped {
		f[Field] = s.org
	}
	return f
}

// Allows reports whether a record owned by org is visible in s.
func (s Scope) Allows(org primitive.ObjectID) bool {
	return !s.scoped || s.org == org
}

// ForWrite returns the organization to stamp on a new record. Unscoped
// writes must name a target organization first.
func (s Scope) ForWrite() (primitive.ObjectID, error) {
	if !s.scoped {
		return primitive.NilObjectID, ErrTargetRequired
	}
	return s.org, nil
}

// OrgChecker reports whether an organization exists.
type OrgChecker interface {
	OrganizationExists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Resolver turns principals into scopes.
type Resolver struct {
	orgs OrgChecker
}

// NewResolver constructs a Resolver.
func NewResolver(orgs OrgChecker) *Resolver {
	return &Resolver{orgs: orgs}
}

// Resolve derives the scope for p. requested is the raw organization_id the
// caller supplied in a filter or payload, or "" when absent.
//
// Superadmins are unscoped unless they target an existing organization.
// Everyone else is scoped to their own organization, and naming any other
// organization is rejected before further processing.
func (r *Resolver) Resolve(ctx context.Context, p *auth.Principal, requested string) (Scope, error) {
	if p == nil {
		return Scope{}, apperr.Unauthorized("not authenticated")
	}
	requested = strings.TrimSpace(requested)

	if p.IsSuperadmin() {
		if requested == "" {
			return Unscoped(), nil
		}
		oid, err := primitive.ObjectIDFromHex(requested)
		if err != nil {
			return Scope{}, ErrInvalidOrganization
		}
		ok, err := r.orgs.OrganizationExists(ctx, oid)
		if err != nil {
			return Scope{}, apperr.Internal("resolve tenant", err)
		}
		if !ok {
			return Scope{}, ErrOrganizationMissing
		}
		return ScopedTo(oid), nil
	}

	own, ok := p.OrgID()
	if !ok {
		return Scope{}, ErrNoOrganization
	}
	if requested != "" {
		oid, err := primitive.ObjectIDFromHex(requested)
		if err != nil {
			return Scope{}, ErrInvalidOrganization
		}
		if oid != own {
			return Scope{}, ErrSpoofedOrganization
		}
	}
	return ScopedTo(own), nil
}
