// internal/app/features/services/edit.go
package services

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	servicestore "github.com/dalemusser/flotahub/internal/app/store/services"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

var errClientUUIDImmutable = apperr.Validation("client_uuid cannot be changed")

type updateInput struct {
	ClientUUID *string `json:"client_uuid"`
	VehiculoID *string `json:"vehiculo_id"`
	EmpresaID  *string `json:"empresa_id"`

	Fecha         *string  `json:"fecha" validate:"omitempty,fecha" label:"Fecha"`
	Hora          *string  `json:"hora" validate:"omitempty,hora" label:"Hora"`
	Origen        *string  `json:"origen" validate:"omitempty,min=1,max=300" label:"Origen"`
	Destino       *string  `json:"destino" validate:"omitempty,min=1,max=300" label:"Destino"`
	Importe       *float64 `json:"importe" validate:"omitempty,gte=0" label:"Importe"`
	ImporteEspera *float64 `json:"importe_espera" validate:"omitempty,gte=0" label:"Importe de espera"`
	Kilometros    *float64 `json:"kilometros" validate:"omitempty,gte=0" label:"Kilometros"`
	Tipo          *string  `json:"tipo" validate:"omitempty,oneof=particular empresa" label:"Tipo"`
	FormaPago     *string  `json:"forma_pago" validate:"omitempty,oneof=efectivo tarjeta empresa" label:"Forma de pago"`
	Observaciones *string  `json:"observaciones" validate:"omitempty,max=1000" label:"Observaciones"`
}

// HandleEdit handles PUT /services/{id} for admins. References are checked
// again in the service's organization and client_uuid never changes.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Services, authz.Update)
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
	shared.Clean(in.Origen, in.Destino, in.Observaciones)

	ctx, cancel := h.Context(r, timeouts.Medium(), "service update")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	current, err := h.load(ctx, scope, p, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if in.ClientUUID != nil && (current.ClientUUID == nil || *current.ClientUUID != *in.ClientUUID) {
		h.Fail(w, r, errClientUUIDImmutable)
		return
	}

	own := tenant.ScopedTo(current.OrganizationID)
	refs := h.Refs()
	u := servicestore.Update{
		Fecha:         in.Fecha,
		Hora:          in.Hora,
		Origen:        in.Origen,
		Destino:       in.Destino,
		Importe:       in.Importe,
		ImporteEspera: in.ImporteEspera,
		Kilometros:    in.Kilometros,
		Tipo:          in.Tipo,
		FormaPago:     in.FormaPago,
		Observaciones: in.Observaciones,
	}
	if in.VehiculoID != nil {
		v, err := refs.Check(ctx, own, refcheck.Vehiculo, *in.VehiculoID)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		u.VehiculoID = &v
	}
	empresa := current.EmpresaID
	if in.EmpresaID != nil {
		empresa, err = refs.CheckOptional(ctx, own, refcheck.Empresa, in.EmpresaID)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		u.EmpresaID = empresa
		u.ClearEmpresa = empresa == nil
	}
	tipo := current.Tipo
	if in.Tipo != nil {
		tipo = *in.Tipo
	}
	if tipo == models.ServiceEmpresa && empresa == nil {
		h.Fail(w, r, errEmpresaRequired)
		return
	}

	updated, err := h.store().Update(ctx, own, id, u)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, updated)
}

// HandleDelete handles DELETE /services/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Services, authz.Delete)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "service delete")
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
	if err := h.store().Delete(ctx, scope, id); err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.ServiceDeleted(ctx, r, p, s)
	httpjson.OK(w, map[string]string{"status": "deleted", "id": id.Hex()})
}
