// internal/app/features/companies/handler.go
package companies

import (
	"net/http"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	companystore "github.com/dalemusser/flotahub/internal/app/store/companies"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/paging"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// Handler serves the billing client (empresa) endpoints.
type Handler struct {
	*shared.Env
}

func NewHandler(env *shared.Env) *Handler {
	return &Handler{Env: env}
}

// ServeList handles GET /companies. q matches a name prefix or an exact
// client number.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Companies, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	active, err := shared.OptionalBool(r, "active")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "companies list")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	page, err := h.Companies().List(ctx, scope, companystore.ListFilter{
		Q:      strings.TrimSpace(r.URL.Query().Get("q")),
		Active: active,
	}, paging.ParseParams(r))
	if err != nil {
		h.Fail(w, r, apperr.Internal("list companies", err))
		return
	}
	httpjson.OK(w, page)
}

// ServeView handles GET /companies/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Companies, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "company view")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	c, err := h.Companies().GetByID(ctx, scope, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, c)
}
