// internal/domain/models/role.go
package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Role is the closed set of principal roles. The zero value is not a valid
// role, so a decoded document with a missing or unknown role never grants
// anything.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleSuperadmin
	RoleAdmin
	RoleTaxista

	// RoleCount sizes per-role lookup tables.
	RoleCount
)

var roleNames = [RoleCount]string{
	RoleUnknown:    "",
	RoleSuperadmin: "superadmin",
	RoleAdmin:      "admin",
	RoleTaxista:    "taxista",
}

// ParseRole maps a wire value to a Role. Matching ignores case and
// surrounding whitespace.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for r := RoleSuperadmin; r < RoleCount; r++ {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if r >= RoleCount {
		return ""
	}
	return roleNames[r]
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	return r > RoleUnknown && r < RoleCount
}

// RequiresOrganization reports whether users with this role must belong to
// an organization. Only superadmins live outside every tenant.
func (r Role) RequiresOrganization() bool {
	return r == RoleAdmin || r == RoleTaxista
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalBSONValue stores roles as their string name.
func (r Role) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.String())
}

// UnmarshalBSONValue decodes a stored role name. Unknown names decode to
// RoleUnknown instead of failing the whole document, so the integrity
// auditor can still read and report them.
func (r *Role) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		*r = RoleUnknown
		return nil
	}
	parsed, err := ParseRole(s)
	if err != nil {
		*r = RoleUnknown
		return nil
	}
	*r = parsed
	return nil
}
