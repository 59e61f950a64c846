// internal/app/features/vehicles/delete.go
package vehicles

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// HandleDelete handles DELETE /vehiculos/{id}. Vehicles still referenced by
// a turno or service are kept.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Vehicles, authz.Delete)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "vehicle delete")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := h.Vehicles().Delete(ctx, scope, id); err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, map[string]string{"status": "deleted", "id": id.Hex()})
}
