// internal/app/features/organizations/delete.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /superadmin/organizations/{id}. Organizations
// that still own users or fleet data are kept.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Organizations, authz.Delete)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "organization delete")
	defer cancel()

	orgs := h.Organizations()
	org, err := orgs.GetByID(ctx, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := orgs.Delete(ctx, id); err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.OrgDeleted(ctx, r, p, org)
	httpjson.OK(w, map[string]string{"status": "deleted", "id": id.Hex()})
}
