// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents superadmins, admins and taxistas.
//
// OrganizationID is nil only for superadmins; every other role must carry
// one (enforced by the user store and the collection validator).
type User struct {
	ID             primitive.ObjectID  `bson:"_id" json:"id"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id"`
	Username       string              `bson:"username" json:"username"`
	UsernameCI     string              `bson:"username_ci" json:"-"`
	FullName       string              `bson:"full_name" json:"full_name"`
	Email          string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string              `bson:"phone,omitempty" json:"phone,omitempty"`
	LicenseNumber  string              `bson:"license_number,omitempty" json:"license_number,omitempty"`
	Role           Role                `bson:"role" json:"role"`
	PasswordHash   string              `bson:"password_hash" json:"-"`
	Active         bool                `bson:"active" json:"active"`

	// NeedsOrgAssignment marks accounts quarantined by the integrity auditor.
	NeedsOrgAssignment bool `bson:"needs_org_assignment,omitempty" json:"needs_org_assignment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
