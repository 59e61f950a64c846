// internal/app/features/shared/env.go
// Package shared holds the dependencies and request helpers the JSON
// feature handlers have in common.
package shared

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	companystore "github.com/dalemusser/flotahub/internal/app/store/companies"
	organizationstore "github.com/dalemusser/flotahub/internal/app/store/organizations"
	vehiclestore "github.com/dalemusser/flotahub/internal/app/store/vehicles"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auditlog"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/cache"
	"github.com/dalemusser/flotahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/inputval"
	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Env is what every feature handler is built from. Cache and Audit may be
// nil.
type Env struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Cache    cache.Cache
	CacheTTL time.Duration
	Audit    *auditlog.Logger
}

// Organizations returns the organization store sharing the env cache.
func (e *Env) Organizations() *organizationstore.Store {
	return organizationstore.New(e.DB).WithCache(e.Cache, e.CacheTTL)
}

// Vehicles returns the vehicle store sharing the env cache.
func (e *Env) Vehicles() *vehiclestore.Store {
	return vehiclestore.New(e.DB).WithCache(e.Cache, e.CacheTTL)
}

// Companies returns the company store sharing the env cache.
func (e *Env) Companies() *companystore.Store {
	return companystore.New(e.DB).WithCache(e.Cache, e.CacheTTL)
}

// Tenants returns the tenant resolver.
func (e *Env) Tenants() *tenant.Resolver {
	return tenant.NewResolver(e.Organizations())
}

// Refs returns the reference validator.
func (e *Env) Refs() *refcheck.Validator {
	return refcheck.New(refcheck.NewMongoOwner(e.DB))
}

// Fail writes err as a JSON error response.
func (e *Env) Fail(w http.ResponseWriter, r *http.Request, err error) {
	httpjson.Error(w, r, e.Log, err)
}

// Context bounds a handler's database work.
func (e *Env) Context(r *http.Request, timeout time.Duration, op string) (context.Context, context.CancelFunc) {
	return timeouts.WithTimeout(r.Context(), timeout, e.Log, op)
}

// Principal returns the caller and checks act on res.
func Principal(r *http.Request, res authz.Resource, act authz.Action) (*auth.Principal, error) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return nil, apperr.Unauthorized("not authenticated")
	}
	if err := authz.Check(p, res, act); err != nil {
		return nil, err
	}
	return p, nil
}

// Scope resolves the caller's tenant scope, honoring an organization_id
// query parameter.
func (e *Env) Scope(ctx context.Context, r *http.Request, p *auth.Principal) (tenant.Scope, error) {
	return e.Tenants().Resolve(ctx, p, r.URL.Query().Get("organization_id"))
}

// WriteTarget resolves the organization a new record is created in.
// requested is the organization_id from the body; superadmins must supply
// it, everyone else may only repeat their own.
func (e *Env) WriteTarget(ctx context.Context, p *auth.Principal, requested string) (primitive.ObjectID, error) {
	scope, err := e.Tenants().Resolve(ctx, p, requested)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return scope.ForWrite()
}

// OwnOrganization returns the caller's own organization for writes that are
// always bound to it (turnos and services). The organization_id query
// parameter and every body value in requested are resolved first, so naming
// another organization fails before any work is done.
func (e *Env) OwnOrganization(ctx context.Context, r *http.Request, p *auth.Principal, requested ...string) (primitive.ObjectID, error) {
	requested = append(requested, r.URL.Query().Get("organization_id"))
	for _, raw := range requested {
		if _, err := e.Tenants().Resolve(ctx, p, raw); err != nil {
			return primitive.NilObjectID, err
		}
	}
	own, ok := p.OrgID()
	if !ok {
		return primitive.NilObjectID, tenant.ErrNoOrganization
	}
	return own, nil
}

// OptionalBool parses a boolean query parameter; empty means unset.
func OptionalBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validationf("%s must be true or false", name)
	}
	return &v, nil
}

// PathID parses the chi URL parameter name as an ObjectID. Malformed ids
// are validation errors.
func PathID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}

// DecodeValid decodes the JSON body into dst and runs its struct rules.
func DecodeValid(r *http.Request, dst any) error {
	if err := httpjson.Decode(r, dst); err != nil {
		return err
	}
	return inputval.Validate(dst).Err()
}

// Clean strips markup from free-text fields in place. nil fields are
// skipped, so optional update fields can be passed directly.
func Clean(fields ...*string) {
	htmlsanitize.All(fields...)
}

// RequireFeature fails with 403 when org has the feature key switched off.
func (e *Env) RequireFeature(ctx context.Context, org primitive.ObjectID, key string) error {
	o, err := e.Organizations().GetByID(ctx, org)
	if err != nil {
		return err
	}
	if !o.Features.Enabled(key) {
		return apperr.Forbidden(key + " is disabled for this organization")
	}
	return nil
}
