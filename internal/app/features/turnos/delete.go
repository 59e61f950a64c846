// internal/app/features/turnos/delete.go
package turnos

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /turnos/{id}. Attached services are removed
// with the turno and their count is returned.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Turnos, authz.Delete)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Long(), "turno delete")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	t, err := h.load(ctx, scope, p, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	n, err := h.store().DeleteCascade(ctx, scope, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.TurnoDeleted(ctx, r, p, t, n)
	httpjson.OK(w, map[string]any{"status": "deleted", "id": id.Hex(), "deleted_services": n})
}
