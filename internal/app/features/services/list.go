// internal/app/features/services/list.go
package services

import (
	"net/http"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	servicestore "github.com/dalemusser/flotahub/internal/app/store/services"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/app/system/turnostate"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errOtherTaxista = apperr.Forbidden("taxistas can only list their own services")

// ServeList handles GET /services. Every reference filter is checked
// against the caller's organization before the query runs.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Services, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	q := r.URL.Query()
	f := servicestore.ListFilter{
		ClientUUID: strings.TrimSpace(q.Get("client_uuid")),
		Tipo:       strings.TrimSpace(q.Get("tipo")),
		FechaDesde: strings.TrimSpace(q.Get("fecha_inicio")),
		FechaHasta: strings.TrimSpace(q.Get("fecha_fin")),
	}
	if f.FechaDesde != "" && !turnostate.ValidDate(f.FechaDesde) {
		h.Fail(w, r, apperr.Validation("fecha_inicio must be YYYY-MM-DD"))
		return
	}
	if f.FechaHasta != "" && !turnostate.ValidDate(f.FechaHasta) {
		h.Fail(w, r, apperr.Validation("fecha_fin must be YYYY-MM-DD"))
		return
	}
	if f.Tipo != "" && f.Tipo != models.ServiceParticular && f.Tipo != models.ServiceEmpresa {
		h.Fail(w, r, apperr.Validation("tipo must be one of: particular, empresa"))
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "services list")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	refs := h.Refs()
	for _, ref := range []struct {
		kind refcheck.Kind
		dst  **primitive.ObjectID
	}{
		{refcheck.Taxista, &f.TaxistaID},
		{refcheck.Vehiculo, &f.VehiculoID},
		{refcheck.Empresa, &f.EmpresaID},
		{refcheck.Turno, &f.TurnoID},
	} {
		raw := q.Get(string(ref.kind))
		id, err := refs.CheckOptional(ctx, scope, ref.kind, &raw)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		*ref.dst = id
	}
	if authz.OwnOnly(p.Role, authz.Services) {
		if f.TaxistaID != nil && *f.TaxistaID != p.UserID {
			h.Fail(w, r, errOtherTaxista)
			return
		}
		self := p.UserID
		f.TaxistaID = &self
	}

	page, err := h.store().List(ctx, scope, f, paging.ParseParams(r))
	if err != nil {
		h.Fail(w, r, apperr.Internal("list services", err))
		return
	}
	httpjson.OK(w, page)
}

// ServeView handles GET /services/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Services, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "service view")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	s, err := h.load(ctx, scope, p, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, s)
}
