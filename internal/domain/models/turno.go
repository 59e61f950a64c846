// internal/domain/models/turno.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TurnoState is the lifecycle state of a shift.
type TurnoState string

const (
	TurnoOpen       TurnoState = "open"
	TurnoClosed     TurnoState = "closed"
	TurnoLiquidated TurnoState = "liquidated"
)

// Turno is a taxista's work shift; the temporal container for services.
// Dates are "YYYY-MM-DD" and hours "HH:MM" so they sort lexically.
type Turno struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	TaxistaID      primitive.ObjectID `bson:"taxista_id" json:"taxista_id"`
	VehiculoID     primitive.ObjectID `bson:"vehiculo_id" json:"vehiculo_id"`
	Estado         TurnoState         `bson:"estado" json:"estado"`

	FechaInicio string `bson:"fecha_inicio" json:"fecha_inicio"`
	HoraInicio  string `bson:"hora_inicio" json:"hora_inicio"`
	KmInicio    int    `bson:"km_inicio" json:"km_inicio"`

	FechaFin *string `bson:"fecha_fin,omitempty" json:"fecha_fin"`
	HoraFin  *string `bson:"hora_fin,omitempty" json:"hora_fin"`
	KmFin    *int    `bson:"km_fin,omitempty" json:"km_fin"`

	LiquidatedAt *time.Time          `bson:"liquidated_at,omitempty" json:"liquidated_at,omitempty"`
	LiquidatedBy *primitive.ObjectID `bson:"liquidated_by,omitempty" json:"liquidated_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
