// internal/app/features/vehicles/new.go
package vehicles

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type createInput struct {
	Matricula      string `json:"matricula" validate:"required,max=20" label:"Matricula"`
	Marca          string `json:"marca" validate:"max=100" label:"Marca"`
	Modelo         string `json:"modelo" validate:"max=100" label:"Modelo"`
	Licencia       string `json:"licencia" validate:"max=50" label:"Licencia"`
	Plazas         int    `json:"plazas" validate:"min=0,max=9" label:"Plazas"`
	Active         *bool  `json:"active"`
	OrganizationID string `json:"organization_id" label:"Organization"`
}

// HandleCreate handles POST /vehiculos. The plate must be unique within the
// target organization.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Vehicles, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in createInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	shared.Clean(&in.Marca, &in.Modelo, &in.Licencia)

	ctx, cancel := h.Context(r, timeouts.Medium(), "vehicle create")
	defer cancel()

	org, err := h.WriteTarget(ctx, p, in.OrganizationID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	v, err := h.Vehicles().Create(ctx, org, models.Vehicle{
		Matricula: in.Matricula,
		Marca:     in.Marca,
		Modelo:    in.Modelo,
		Licencia:  in.Licencia,
		Plazas:    in.Plazas,
		Active:    in.Active == nil || *in.Active,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, v)
}
