// internal/app/features/companies/write.go
package companies

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	companystore "github.com/dalemusser/flotahub/internal/app/store/companies"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type createInput struct {
	NumeroCliente  string `json:"numero_cliente" validate:"required,max=50" label:"Numero de cliente"`
	Nombre         string `json:"nombre" validate:"required,max=200" label:"Nombre"`
	CIF            string `json:"cif" validate:"max=20" label:"CIF"`
	Direccion      string `json:"direccion" validate:"max=300" label:"Direccion"`
	Email          string `json:"email" validate:"omitempty,emailaddr" label:"Email"`
	Telefono       string `json:"telefono" validate:"max=30" label:"Telefono"`
	Active         *bool  `json:"active"`
	OrganizationID string `json:"organization_id" label:"Organization"`
}

type updateInput struct {
	NumeroCliente *string `json:"numero_cliente" validate:"omitempty,max=50" label:"Numero de cliente"`
	Nombre        *string `json:"nombre" validate:"omitempty,max=200" label:"Nombre"`
	CIF           *string `json:"cif" validate:"omitempty,max=20" label:"CIF"`
	Direccion     *string `json:"direccion" validate:"omitempty,max=300" label:"Direccion"`
	Email         *string `json:"email" validate:"omitempty,emailaddr" label:"Email"`
	Telefono      *string `json:"telefono" validate:"omitempty,max=30" label:"Telefono"`
	Active        *bool   `json:"active"`
}

// HandleCreate handles POST /companies.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Companies, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in createInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	shared.Clean(&in.Nombre, &in.CIF, &in.Direccion, &in.Telefono)

	ctx, cancel := h.Context(r, timeouts.Medium(), "company create")
	defer cancel()

	org, err := h.WriteTarget(ctx, p, in.OrganizationID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	c, err := h.Companies().Create(ctx, org, models.Company{
		NumeroCliente: in.NumeroCliente,
		Nombre:        in.Nombre,
		CIF:           in.CIF,
		Direccion:     in.Direccion,
		Email:         in.Email,
		Telefono:      in.Telefono,
		Active:        in.Active == nil || *in.Active,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, c)
}

// HandleEdit handles PUT /companies/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Companies, authz.Update)
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
	shared.Clean(in.Nombre, in.CIF, in.Direccion, in.Telefono)

	ctx, cancel := h.Context(r, timeouts.Medium(), "company update")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	c, err := h.Companies().Update(ctx, scope, id, companystore.Update{
		NumeroCliente: in.NumeroCliente,
		Nombre:        in.Nombre,
		CIF:           in.CIF,
		Direccion:     in.Direccion,
		Email:         in.Email,
		Telefono:      in.Telefono,
		Active:        in.Active,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, c)
}

// HandleDelete handles DELETE /companies/{id}. Companies billed on any
// service are kept.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Companies, authz.Delete)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "company delete")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := h.Companies().Delete(ctx, scope, id); err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, map[string]string{"status": "deleted", "id": id.Hex()})
}
