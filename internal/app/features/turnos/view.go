// internal/app/features/turnos/view.go
package turnos

import (
	"errors"
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	turnostore "github.com/dalemusser/flotahub/internal/app/store/turnos"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/app/system/turnostate"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type turnoView struct {
	models.Turno
	Summary turnostore.Summary `json:"summary"`
}

// ServeView handles GET /turnos/{id} and includes the service count and
// total amount.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Turnos, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "turno view")
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
	sum, err := h.store().Summarize(ctx, t.OrganizationID, t.ID)
	if err != nil {
		h.Fail(w, r, apperr.Internal("summarize turno", err))
		return
	}
	httpjson.OK(w, turnoView{Turno: t, Summary: sum})
}

type activeResponse struct {
	Active bool       `json:"active"`
	Turno  *turnoView `json:"turno"`
}

// ServeActive handles GET /turnos/active: the caller's open shift, if any.
// Having none is not an error here.
func (h *Handler) ServeActive(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Turnos, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if p.OrganizationID == nil {
		h.Fail(w, r, tenant.ErrNoOrganization)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "turno active")
	defer cancel()

	t, err := h.gate().Active(ctx, *p.OrganizationID, p.UserID)
	if errors.Is(err, turnostate.ErrNoActiveShift) {
		httpjson.OK(w, activeResponse{})
		return
	}
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	sum, err := h.store().Summarize(ctx, t.OrganizationID, t.ID)
	if err != nil {
		h.Fail(w, r, apperr.Internal("summarize turno", err))
		return
	}
	httpjson.OK(w, activeResponse{Active: true, Turno: &turnoView{Turno: t, Summary: sum}})
}
