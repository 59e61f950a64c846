// internal/app/features/turnos/transitions.go
package turnos

import (
	"net/http"
	"time"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/app/system/turnostate"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type finalizeInput struct {
	FechaFin string `json:"fecha_fin"`
	HoraFin  string `json:"hora_fin"`
	KmFin    *int   `json:"km_fin"`
}

// HandleFinalize handles PUT /turnos/{id}/finalizar (open -> closed).
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Turnos, authz.Update)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in finalizeInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "turno finalize")
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
	from := t.Estado
	end := turnostate.End{FechaFin: in.FechaFin, HoraFin: in.HoraFin, KmFin: in.KmFin}
	if err := turnostate.Close(&t, end, time.Now().UTC()); err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := h.store().SaveTransition(ctx, t, from); err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, t)
}

// HandleLiquidate handles PUT /turnos/{id}/liquidar (closed -> liquidated).
// Only admins hold the Manage grant.
func (h *Handler) HandleLiquidate(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Turnos, authz.Manage)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "turno liquidate")
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
	if err := h.RequireFeature(ctx, t.OrganizationID, models.FeatureLiquidations); err != nil {
		h.Fail(w, r, err)
		return
	}
	from := t.Estado
	if err := turnostate.Liquidate(&t, p.UserID, time.Now().UTC()); err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := h.store().SaveTransition(ctx, t, from); err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.TurnoLiquidated(ctx, r, p, t)
	httpjson.OK(w, t)
}
