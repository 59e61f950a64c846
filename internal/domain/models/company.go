// internal/domain/models/company.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is a billing client of an organization.
// NumeroCliente is unique per (organization_id, numero_cliente).
type Company struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	NumeroCliente  string             `bson:"numero_cliente" json:"numero_cliente"`
	Nombre         string             `bson:"nombre" json:"nombre"`
	NombreCI       string             `bson:"nombre_ci" json:"-"`
	CIF            string             `bson:"cif,omitempty" json:"cif,omitempty"`
	Direccion      string             `bson:"direccion,omitempty" json:"direccion,omitempty"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Telefono       string             `bson:"telefono,omitempty" json:"telefono,omitempty"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
