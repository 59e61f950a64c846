// internal/app/features/organizations/list.go
package organizations

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	organizationstore "github.com/dalemusser/flotahub/internal/app/store/organizations"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// ServeList handles GET /superadmin/organizations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, err := shared.Principal(r, authz.Organizations, authz.Read); err != nil {
		h.Fail(w, r, err)
		return
	}
	f := organizationstore.ListFilter{Q: strings.TrimSpace(r.URL.Query().Get("q"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.Fail(w, r, apperr.Validation("active must be true or false"))
			return
		}
		f.Active = &active
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "organizations list")
	defer cancel()

	page, err := h.Organizations().List(ctx, f, paging.ParseParams(r))
	if err != nil {
		h.Fail(w, r, apperr.Internal("list organizations", err))
		return
	}
	httpjson.OK(w, page)
}

// ServeView handles GET /superadmin/organizations/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	if _, err := shared.Principal(r, authz.Organizations, authz.Read); err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	ctx, cancel := h.Context(r, timeouts.Short(), "organization view")
	defer cancel()

	org, err := h.Organizations().GetByID(ctx, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, org)
}
