// internal/app/features/services/input.go
package services

import (
	"context"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/idempotency"
	"github.com/dalemusser/flotahub/internal/app/system/inputval"
	"github.com/dalemusser/flotahub/internal/app/system/refcheck"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errEmpresaRequired = apperr.Validation("empresa_id is required when tipo is empresa")

// serviceInput is one trip as sent by the mobile client.
type serviceInput struct {
	// OrganizationID is only checked against the caller's own.
	OrganizationID string  `json:"organization_id"`
	ClientUUID     *string `json:"client_uuid"`
	TurnoID        *string `json:"turno_id"`
	VehiculoID     *string `json:"vehiculo_id"`
	EmpresaID      *string `json:"empresa_id"`

	Fecha         string   `json:"fecha" validate:"required,fecha" label:"Fecha"`
	Hora          string   `json:"hora" validate:"required,hora" label:"Hora"`
	Origen        string   `json:"origen" validate:"required,max=300" label:"Origen"`
	Destino       string   `json:"destino" validate:"required,max=300" label:"Destino"`
	Importe       *float64 `json:"importe" validate:"required,gte=0" label:"Importe"`
	ImporteEspera float64  `json:"importe_espera" validate:"gte=0" label:"Importe de espera"`
	Kilometros    float64  `json:"kilometros" validate:"gte=0" label:"Kilometros"`
	Tipo          string   `json:"tipo" validate:"omitempty,oneof=particular empresa" label:"Tipo"`
	FormaPago     string   `json:"forma_pago" validate:"omitempty,oneof=efectivo tarjeta empresa" label:"Forma de pago"`
	Observaciones string   `json:"observaciones" validate:"max=1000" label:"Observaciones"`
}

// builder returns the idempotency build step for in. It runs only when no
// stored service already holds the client_uuid, so a retry never
// re-validates the payload.
func (h *Handler) builder(p *auth.Principal, org primitive.ObjectID, in serviceInput) idempotency.BuildFunc {
	return func(ctx context.Context) (models.Service, error) {
		if err := inputval.Validate(in).Err(); err != nil {
			return models.Service{}, err
		}
		scope := tenant.ScopedTo(org)
		refs := h.Refs()

		requested, err := refs.CheckOptional(ctx, scope, refcheck.Turno, in.TurnoID)
		if err != nil {
			return models.Service{}, err
		}
		turno, err := h.gate().ForService(ctx, org, p.UserID, requested)
		if err != nil {
			return models.Service{}, err
		}

		vehiculo := turno.VehiculoID
		if v, err := refs.CheckOptional(ctx, scope, refcheck.Vehiculo, in.VehiculoID); err != nil {
			return models.Service{}, err
		} else if v != nil {
			vehiculo = *v
		}

		empresa, err := refs.CheckOptional(ctx, scope, refcheck.Empresa, in.EmpresaID)
		if err != nil {
			return models.Service{}, err
		}
		tipo := in.Tipo
		if tipo == "" {
			tipo = models.ServiceParticular
		}
		if tipo == models.ServiceEmpresa && empresa == nil {
			return models.Service{}, errEmpresaRequired
		}
		forma := in.FormaPago
		if forma == "" {
			forma = models.PagoEfectivo
		}

		shared.Clean(&in.Origen, &in.Destino, &in.Observaciones)
		turnoID := turno.ID
		return models.Service{
			OrganizationID: org,
			TaxistaID:      p.UserID,
			VehiculoID:     vehiculo,
			EmpresaID:      empresa,
			TurnoID:        &turnoID,
			Fecha:          in.Fecha,
			Hora:           in.Hora,
			Origen:         in.Origen,
			Destino:        in.Destino,
			Importe:        *in.Importe,
			ImporteEspera:  in.ImporteEspera,
			Kilometros:     in.Kilometros,
			Tipo:           tipo,
			FormaPago:      forma,
			Observaciones:  in.Observaciones,
		}, nil
	}
}
