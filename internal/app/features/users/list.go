// internal/app/features/users/list.go
package users

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

// ServeList handles GET /users. Taxistas only ever see themselves.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Users, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	q := r.URL.Query()
	f := userstore.ListFilter{Q: strings.TrimSpace(q.Get("q"))}
	if raw := strings.TrimSpace(q.Get("role")); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			h.Fail(w, r, userstore.ErrInvalidRole)
			return
		}
		f.Role = &role
	}
	if raw := strings.TrimSpace(q.Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.Fail(w, r, apperr.Validation("active must be true or false"))
			return
		}
		f.Active = &active
	}
	if authz.OwnOnly(p.Role, authz.Users) {
		self := p.UserID
		f.OnlyID = &self
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "users list")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	page, err := userstore.New(h.DB).List(ctx, scope, f, paging.ParseParams(r))
	if err != nil {
		h.Fail(w, r, apperr.Internal("list users", err))
		return
	}
	httpjson.OK(w, page)
}
