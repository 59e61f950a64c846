// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Branding holds the white-label settings shown in client apps.
type Branding struct {
	DisplayName    string `bson:"display_name,omitempty" json:"display_name,omitempty"`
	LogoURL        string `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	PrimaryColor   string `bson:"primary_color,omitempty" json:"primary_color,omitempty"`
	SecondaryColor string `bson:"secondary_color,omitempty" json:"secondary_color,omitempty"`
}

// Organization is a tenant. It is the root of all scoping and the only
// domain document without an organization_id of its own.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"` // folded, unique
	Slug      string             `bson:"slug" json:"slug"`
	CIF       string             `bson:"cif,omitempty" json:"cif,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Branding  Branding           `bson:"branding" json:"branding"`
	Features  Features           `bson:"features" json:"features"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
