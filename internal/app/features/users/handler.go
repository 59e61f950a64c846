// internal/app/features/users/handler.go
package users

import (
	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

// Handler serves the user administration endpoints.
type Handler struct {
	*shared.Env
}

// NewHandler constructs a users Handler.
func NewHandler(env *shared.Env) *Handler {
	return &Handler{Env: env}
}

var (
	errNotEnoughPermissions = apperr.Forbidden("not enough permissions")
	errSelfDelete           = apperr.Validation("you cannot delete your own account")
	errSelfRole             = apperr.Validation("you cannot change your own role")
	errSelfDeactivate       = apperr.Validation("you cannot deactivate your own account")
)

// canManage reports whether p may modify target. Admins manage taxistas
// and themselves; superadmins manage everyone.
func canManage(p *auth.Principal, target models.User) bool {
	switch p.Role {
	case models.RoleSuperadmin:
		return true
	case models.RoleAdmin:
		return target.ID == p.UserID || target.Role == models.RoleTaxista
	default:
		return false
	}
}
