// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.uber.org/zap"
)

// Resource is a protected collection.
type Resource uint8

const (
	Users Resource = iota
	Organizations
	Vehicles
	Companies
	Turnos
	Services
	AuditEvents

	resourceCount
)

var resourceNames = [resourceCount]string{
	Users:         "users",
	Organizations: "organizations",
	Vehicles:      "vehicles",
	Companies:     "companies",
	Turnos:        "turnos",
	Services:      "services",
	AuditEvents:   "audit_events",
}

func (r Resource) String() string {
	if r >= resourceCount {
		return "unknown"
	}
	return resourceNames[r]
}

// Action is an operation on a Resource.
type Action uint8

const (
	Read Action = 1 << iota
	Create
	Update
	Delete
	// Manage covers state changes beyond plain updates (liquidation).
	Manage
)

const crud = Read | Create | Update | Delete

// grant is one cell of the matrix. own restricts the role to records it
// owns (its own user record, its own turnos and services).
type grant struct {
	actions Action
	own     bool
}

// matrix is indexed by role then resource. RoleUnknown has no grants.
var matrix = [models.RoleCount][resourceCount]grant{
	models.RoleSuperadmin: {
		Users:         {actions: crud},
		Organizations: {actions: crud},
		Vehicles:      {actions: crud},
		Companies:     {actions: crud},
		Turnos:        {actions: Read},
		Services:      {actions: Read},
		AuditEvents:   {actions: Read},
	},
	models.RoleAdmin: {
		Users:       {actions: crud},
		Vehicles:    {actions: crud},
		Companies:   {actions: crud},
		Turnos:      {actions: Read | Update | Delete | Manage},
		Services:    {actions: Read | Update | Delete},
		AuditEvents: {actions: Read},
	},
	models.RoleTaxista: {
		Users:     {actions: Read, own: true},
		Vehicles:  {actions: Read},
		Companies: {actions: Read},
		Turnos:    {actions: Read | Create | Update, own: true},
		Services:  {actions: Read | Create, own: true},
	},
}

// Can reports whether role may perform every action in act on res.
func Can(role models.Role, res Resource, act Action) bool {
	if !role.Valid() || res >= resourceCount || act == 0 {
		return false
	}
	return matrix[role][res].actions&act == act
}

// OwnOnly reports whether role is limited to its own records of res.
func OwnOnly(role models.Role, res Resource) bool {
	if !role.Valid() || res >= resourceCount {
		return false
	}
	return matrix[role][res].own
}

// Check returns a forbidden error when p may not perform act on res.
func Check(p *auth.Principal, res Resource, act Action) error {
	if p == nil {
		return apperr.Unauthorized("not authenticated")
	}
	if !Can(p.Role, res, act) {
		return apperr.Forbidden("not enough permissions")
	}
	return nil
}

// CanAssignRole reports whether actor may create a user with target role or
// promote a user to it. Admins only manage taxistas.
func CanAssignRole(actor, target models.Role) bool {
	if !target.Valid() {
		return false
	}
	switch actor {
	case models.RoleSuperadmin:
		return true
	case models.RoleAdmin:
		return target == models.RoleTaxista
	default:
		return false
	}
}

// Require is route middleware that rejects principals lacking act on res.
func Require(res Resource, act Action, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := auth.CurrentPrincipal(r)
			if err := Check(p, res, act); err != nil {
				httpjson.Error(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
