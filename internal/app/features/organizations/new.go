// internal/app/features/organizations/new.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type createOrgInput struct {
	Name     string          `json:"name" validate:"required,max=200" label:"Organization name"`
	CIF      string          `json:"cif" validate:"max=20" label:"CIF"`
	Address  string          `json:"address" validate:"max=300" label:"Address"`
	Email    string          `json:"email" validate:"omitempty,emailaddr" label:"Email"`
	Phone    string          `json:"phone" validate:"max=30" label:"Phone"`
	Branding brandingInput   `json:"branding"`
	Features models.Features `json:"features"`
}

// HandleCreate handles POST /superadmin/organizations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Organizations, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in createOrgInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	for k := range in.Features {
		if !models.IsKnownFeature(k) {
			h.Fail(w, r, apperr.Validationf("unknown feature %q", k))
			return
		}
	}
	shared.Clean(&in.Name, &in.CIF, &in.Address, &in.Phone)
	if in.Name == "" {
		h.Fail(w, r, apperr.Validation("Organization name is required."))
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "organization create")
	defer cancel()

	org, err := h.Organizations().Create(ctx, models.Organization{
		Name:     in.Name,
		CIF:      in.CIF,
		Address:  in.Address,
		Email:    in.Email,
		Phone:    in.Phone,
		Branding: in.Branding.model(),
		Features: in.Features,
		Active:   true,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.OrgCreated(ctx, r, p, org)
	httpjson.OK(w, org)
}
