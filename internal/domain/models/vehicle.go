// internal/domain/models/vehicle.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle is a taxi owned by one organization. Matricula is stored
// normalized and is unique per (organization_id, matricula).
type Vehicle struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Matricula      string             `bson:"matricula" json:"matricula"`
	Marca          string             `bson:"marca,omitempty" json:"marca,omitempty"`
	Modelo         string             `bson:"modelo,omitempty" json:"modelo,omitempty"`
	Licencia       string             `bson:"licencia,omitempty" json:"licencia,omitempty"`
	Plazas         int                `bson:"plazas,omitempty" json:"plazas,omitempty"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
