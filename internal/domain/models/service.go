// internal/domain/models/service.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service types.
const (
	ServiceParticular = "particular"
	ServiceEmpresa    = "empresa"
)

// Payment methods.
const (
	PagoEfectivo = "efectivo"
	PagoTarjeta  = "tarjeta"
	PagoEmpresa  = "empresa"
)

// Service is a single logged trip. ClientUUID, when present, is the
// client-generated idempotency key, unique per (organization_id, client_uuid).
type Service struct {
	ID             primitive.ObjectID  `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID  `bson:"organization_id" json:"organization_id"`
	TaxistaID      primitive.ObjectID  `bson:"taxista_id" json:"taxista_id"`
	VehiculoID     primitive.ObjectID  `bson:"vehiculo_id" json:"vehiculo_id"`
	EmpresaID      *primitive.ObjectID `bson:"empresa_id,omitempty" json:"empresa_id"`
	TurnoID        *primitive.ObjectID `bson:"turno_id,omitempty" json:"turno_id"`
	ClientUUID     *string             `bson:"client_uuid,omitempty" json:"client_uuid"`

	Fecha         string  `bson:"fecha" json:"fecha"`
	Hora          string  `bson:"hora" json:"hora"`
	Origen        string  `bson:"origen" json:"origen"`
	Destino       string  `bson:"destino" json:"destino"`
	Importe       float64 `bson:"importe" json:"importe"`
	ImporteEspera float64 `bson:"importe_espera" json:"importe_espera"`
	Kilometros    float64 `bson:"kilometros" json:"kilometros"`
	Tipo          string  `bson:"tipo" json:"tipo"`
	FormaPago     string  `bson:"forma_pago" json:"forma_pago"`
	Observaciones string  `bson:"observaciones,omitempty" json:"observaciones,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Total is the amount billed for the trip including waiting time.
func (s Service) Total() float64 {
	return s.Importe + s.ImporteEspera
}
