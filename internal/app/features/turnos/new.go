// internal/app/features/turnos/new.go
package turnos

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/inputval"
	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type startInput struct {
	OrganizationID string `json:"organization_id"`
	VehiculoID     string `json:"vehiculo_id" validate:"required" label:"Vehiculo"`
	FechaInicio    string `json:"fecha_inicio" validate:"required,fecha" label:"Fecha de inicio"`
	HoraInicio     string `json:"hora_inicio" validate:"required,hora" label:"Hora de inicio"`
	KmInicio       *int   `json:"km_inicio" validate:"required,min=0" label:"Km de inicio"`
}

// HandleCreate handles POST /turnos: the calling taxista starts a shift.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Turnos, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in startInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "turno start")
	defer cancel()

	org, err := h.OwnOrganization(ctx, r, p, in.OrganizationID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := inputval.Validate(in).Err(); err != nil {
		h.Fail(w, r, err)
		return
	}

	vehiculo, err := h.Refs().Check(ctx, tenant.ScopedTo(org), refcheck.Vehiculo, in.VehiculoID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := h.gate().CanStart(ctx, org, p.UserID); err != nil {
		h.Fail(w, r, err)
		return
	}
	t, err := h.store().Create(ctx, models.Turno{
		OrganizationID: org,
		TaxistaID:      p.UserID,
		VehiculoID:     vehiculo,
		FechaInicio:    in.FechaInicio,
		HoraInicio:     in.HoraInicio,
		KmInicio:       *in.KmInicio,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, t)
}
