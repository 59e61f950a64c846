// internal/app/features/users/view.go
package users

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// ServeView handles GET /users/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Users, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if authz.OwnOnly(p.Role, authz.Users) && id != p.UserID {
		h.Fail(w, r, errNotEnoughPermissions)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "user view")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	u, err := userstore.New(h.DB).GetByID(ctx, scope, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, u)
}
