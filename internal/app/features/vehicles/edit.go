// internal/app/features/vehicles/edit.go
package vehicles

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	vehiclestore "github.com/dalemusser/flotahub/internal/app/store/vehicles"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

type updateInput struct {
	Matricula *string `json:"matricula" validate:"omitempty,max=20" label:"Matricula"`
	Marca     *string `json:"marca" validate:"omitempty,max=100" label:"Marca"`
	Modelo    *string `json:"modelo" validate:"omitempty,max=100" label:"Modelo"`
	Licencia  *string `json:"licencia" validate:"omitempty,max=50" label:"Licencia"`
	Plazas    *int    `json:"plazas" validate:"omitempty,min=0,max=9" label:"Plazas"`
	Active    *bool   `json:"active"`
}

// HandleEdit handles PUT /vehiculos/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Vehicles, authz.Update)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in updateInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	shared.Clean(in.Marca, in.Modelo, in.Licencia)

	ctx, cancel := h.Context(r, timeouts.Medium(), "vehicle update")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	v, err := h.Vehicles().Update(ctx, scope, id, vehiclestore.Update{
		Matricula: in.Matricula,
		Marca:     in.Marca,
		Modelo:    in.Modelo,
		Licencia:  in.Licencia,
		Plazas:    in.Plazas,
		Active:    in.Active,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, v)
}
