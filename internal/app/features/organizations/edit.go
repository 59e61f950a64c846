// internal/app/features/organizations/edit.go
package organizations

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	organizationstore "github.com/dalemusser/flotahub/internal/app/store/organizations"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

type updateOrgInput struct {
	Name     *string        `json:"name" validate:"omitempty,max=200" label:"Organization name"`
	CIF      *string        `json:"cif" validate:"omitempty,max=20" label:"CIF"`
	Address  *string        `json:"address" validate:"omitempty,max=300" label:"Address"`
	Email    *string        `json:"email" validate:"omitempty,emailaddr" label:"Email"`
	Phone    *string        `json:"phone" validate:"omitempty,max=30" label:"Phone"`
	Branding *brandingInput `json:"branding"`
	Active   *bool          `json:"active"`
}

// fields names the fields present in the payload, for the audit trail.
func (in updateOrgInput) fields() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(in.Name != nil, "name")
	add(in.CIF != nil, "cif")
	add(in.Address != nil, "address")
	add(in.Email != nil, "email")
	add(in.Phone != nil, "phone")
	add(in.Branding != nil, "branding")
	add(in.Active != nil, "active")
	return out
}

// HandleEdit handles PUT /superadmin/organizations/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Organizations, authz.Update)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in updateOrgInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	shared.Clean(in.Name, in.CIF, in.Address, in.Phone)
	if in.Name != nil && *in.Name == "" {
		h.Fail(w, r, apperr.Validation("Organization name cannot be empty."))
		return
	}

	u := organizationstore.Update{
		Name:    in.Name,
		CIF:     in.CIF,
		Address: in.Address,
		Email:   in.Email,
		Phone:   in.Phone,
		Active:  in.Active,
	}
	if in.Branding != nil {
		b := in.Branding.model()
		u.Branding = &b
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "organization update")
	defer cancel()

	org, err := h.Organizations().Update(ctx, id, u)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.OrgUpdated(ctx, r, p, org, in.fields())
	httpjson.OK(w, org)
}
