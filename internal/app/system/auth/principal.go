// internal/app/system/auth/principal.go
// Package auth authenticates API callers and carries the resulting
// Principal through the request context.
package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller. OrganizationID is nil only for
// superadmins.
type Principal struct {
	UserID         primitive.ObjectID
	Username       string
	FullName       string
	Role           models.Role
	OrganizationID *primitive.ObjectID
}

// IsSuperadmin reports whether p has global scope.
func (p *Principal) IsSuperadmin() bool {
	return p != nil && p.Role == models.RoleSuperadmin
}

// OrgID returns the principal's organization, if any.
func (p *Principal) OrgID() (primitive.ObjectID, bool) {
	if p == nil || p.OrganizationID == nil {
		return primitive.NilObjectID, false
	}
	return *p.OrganizationID, true
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the principal and a found flag.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// CurrentPrincipal returns the request's principal and a found flag.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	return FromContext(r.Context())
}

// WithTestPrincipal injects p into r, bypassing token parsing.
// Only tests should call this.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(WithPrincipal(r.Context(), p))
}
