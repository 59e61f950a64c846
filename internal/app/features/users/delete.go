// internal/app/features/users/delete.go
package users

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /users/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Users, authz.Delete)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if id == p.UserID {
		h.Fail(w, r, errSelfDelete)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "user delete")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	store := userstore.New(h.DB)
	target, err := store.GetByID(ctx, scope, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if !canManage(p, target) {
		h.Fail(w, r, errNotEnoughPermissions)
		return
	}
	if err := store.Delete(ctx, scope, id); err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.UserDeleted(ctx, r, p, target)
	httpjson.OK(w, map[string]string{"status": "deleted", "id": id.Hex()})
}
