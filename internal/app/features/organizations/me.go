// internal/app/features/organizations/me.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type myOrganization struct {
	models.Organization
	KnownFeatures []string `json:"known_features"`
}

// ServeMine handles GET /organization/me: the caller's own organization
// with branding and the effective feature flags.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		h.Fail(w, r, apperr.Unauthorized("not authenticated"))
		return
	}
	orgID, ok := p.OrgID()
	if !ok {
		h.Fail(w, r, apperr.NotFound("superadmin accounts have no organization"))
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "organization me")
	defer cancel()

	org, err := h.Organizations().GetByID(ctx, orgID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	effective := make(models.Features, len(models.KnownFeatures()))
	for _, k := range models.KnownFeatures() {
		effective[k] = org.Features.Enabled(k)
	}
	org.Features = effective
	httpjson.OK(w, myOrganization{Organization: org, KnownFeatures: models.KnownFeatures()})
}
