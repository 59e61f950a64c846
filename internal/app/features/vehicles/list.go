// internal/app/features/vehicles/list.go
package vehicles

import (
	"net/http"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	vehiclestore "github.com/dalemusser/flotahub/internal/app/store/vehicles"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// ServeList handles GET /vehiculos.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Vehicles, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	active, err := shared.OptionalBool(r, "active")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "vehicles list")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	page, err := h.Vehicles().List(ctx, scope, vehiclestore.ListFilter{
		Q:      strings.TrimSpace(r.URL.Query().Get("q")),
		Active: active,
	}, paging.ParseParams(r))
	if err != nil {
		h.Fail(w, r, apperr.Internal("list vehicles", err))
		return
	}
	httpjson.OK(w, page)
}

// ServeView handles GET /vehiculos/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Vehicles, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "vehicle view")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	v, err := h.Vehicles().GetByID(ctx, scope, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, v)
}
