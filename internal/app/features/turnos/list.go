// internal/app/features/turnos/list.go
package turnos

import (
	"net/http"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	turnostore "github.com/dalemusser/flotahub/internal/app/store/turnos"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/app/system/turnostate"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

var errOtherTaxista = apperr.Forbidden("taxistas can only list their own turnos")

// ServeList handles GET /turnos. Reference filters must belong to the
// caller's organization; taxistas are always filtered to themselves.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Turnos, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	q := r.URL.Query()
	f := turnostore.ListFilter{
		FechaDesde: strings.TrimSpace(q.Get("fecha_inicio")),
		FechaHasta: strings.TrimSpace(q.Get("fecha_fin")),
	}
	for name, v := range map[string]string{"fecha_inicio": f.FechaDesde, "fecha_fin": f.FechaHasta} {
		if v != "" && !turnostate.ValidDate(v) {
			h.Fail(w, r, apperr.Validationf("%s must be YYYY-MM-DD", name))
			return
		}
	}
	if raw := strings.TrimSpace(q.Get("estado")); raw != "" {
		switch st := models.TurnoState(raw); st {
		case models.TurnoOpen, models.TurnoClosed, models.TurnoLiquidated:
			f.Estado = st
		default:
			h.Fail(w, r, apperr.Validation("estado must be one of: open, closed, liquidated"))
			return
		}
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "turnos list")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	refs := h.Refs()
	taxista := q.Get("taxista_id")
	if f.TaxistaID, err = refs.CheckOptional(ctx, scope, refcheck.Taxista, &taxista); err != nil {
		h.Fail(w, r, err)
		return
	}
	vehiculo := q.Get("vehiculo_id")
	if f.VehiculoID, err = refs.CheckOptional(ctx, scope, refcheck.Vehiculo, &vehiculo); err != nil {
		h.Fail(w, r, err)
		return
	}
	empresa := q.Get("empresa_id")
	if f.EmpresaID, err = refs.CheckOptional(ctx, scope, refcheck.Empresa, &empresa); err != nil {
		h.Fail(w, r, err)
		return
	}
	turno := q.Get("turno_id")
	if f.TurnoID, err = refs.CheckOptional(ctx, scope, refcheck.Turno, &turno); err != nil {
		h.Fail(w, r, err)
		return
	}
	if authz.OwnOnly(p.Role, authz.Turnos) {
		if f.TaxistaID != nil && *f.TaxistaID != p.UserID {
			h.Fail(w, r, errOtherTaxista)
			return
		}
		self := p.UserID
		f.TaxistaID = &self
	}

	page, err := h.store().List(ctx, scope, f, paging.ParseParams(r))
	if err != nil {
		h.Fail(w, r, apperr.Internal("list turnos", err))
		return
	}
	httpjson.OK(w, page)
}
