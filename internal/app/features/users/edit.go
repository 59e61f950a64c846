// internal/app/features/users/edit.go
package users

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type updateUserInput struct {
	FullName      *string `json:"full_name" validate:"omitempty,max=200" label:"Full name"`
	Email         *string `json:"email" validate:"omitempty,emailaddr" label:"Email"`
	Phone         *string `json:"phone" validate:"omitempty,max=30" label:"Phone"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,max=50" label:"License number"`
	Role          *string `json:"role" label:"Role"`
	Active        *bool   `json:"active"`
	Password      *string `json:"password" validate:"omitempty,max=200" label:"Password"`
}

func (in updateUserInput) fields() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(in.FullName != nil, "full_name")
	add(in.Email != nil, "email")
	add(in.Phone != nil, "phone")
	add(in.LicenseNumber != nil, "license_number")
	add(in.Role != nil, "role")
	add(in.Active != nil, "active")
	add(in.Password != nil, "password")
	return out
}

// HandleEdit handles PUT /users/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Users, authz.Update)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in updateUserInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	shared.Clean(in.FullName, in.Phone, in.LicenseNumber)

	u := userstore.Update{
		FullName:      in.FullName,
		Email:         in.Email,
		Phone:         in.Phone,
		LicenseNumber: in.LicenseNumber,
		Active:        in.Active,
	}
	if in.Role != nil {
		role, err := models.ParseRole(*in.Role)
		if err != nil {
			h.Fail(w, r, userstore.ErrInvalidRole)
			return
		}
		switch {
		case id == p.UserID && role != p.Role:
			h.Fail(w, r, errSelfRole)
			return
		case id != p.UserID && !authz.CanAssignRole(p.Role, role):
			h.Fail(w, r, errNotEnoughPermissions)
			return
		}
		u.Role = &role
	}
	if in.Active != nil && !*in.Active && id == p.UserID {
		h.Fail(w, r, errSelfDeactivate)
		return
	}
	if in.Password != nil {
		if err := auth.ValidatePassword(*in.Password); err != nil {
			h.Fail(w, r, apperr.Validation(err.Error()))
			return
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			h.Fail(w, r, apperr.Internal("hash password", err))
			return
		}
		u.PasswordHash = &hash
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "user update")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	store := userstore.New(h.DB)
	target, err := store.GetByID(ctx, scope, id)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if !canManage(p, target) {
		h.Fail(w, r, errNotEnoughPermissions)
		return
	}
	updated, err := store.Update(ctx, scope, id, u)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.UserUpdated(ctx, r, p, updated, in.fields())
	httpjson.OK(w, updated)
}
