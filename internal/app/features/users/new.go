// internal/app/features/users/new.go
package users

import (
	"net/http"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createUserInput struct {
	Username       string `json:"username" validate:"required,min=3,max=100" label:"Username"`
	Password       string `json:"password" validate:"required,max=200" label:"Password"`
	FullName       string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email          string `json:"email" validate:"omitempty,emailaddr" label:"Email"`
	Phone          string `json:"phone" validate:"max=30" label:"Phone"`
	LicenseNumber  string `json:"license_number" validate:"max=50" label:"License number"`
	Role           string `json:"role" validate:"required" label:"Role"`
	OrganizationID string `json:"organization_id" label:"Organization"`
}

// HandleCreate handles POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Users, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in createUserInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		h.Fail(w, r, userstore.ErrInvalidRole)
		return
	}
	if !authz.CanAssignRole(p.Role, role) {
		h.Fail(w, r, apperr.Forbidden("you cannot create users with role "+role.String()))
		return
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		h.Fail(w, r, apperr.Validation(err.Error()))
		return
	}
	shared.Clean(&in.FullName, &in.Phone, &in.LicenseNumber)

	ctx, cancel := h.Context(r, timeouts.Medium(), "user create")
	defer cancel()

	var org *primitive.ObjectID
	if role.RequiresOrganization() {
		scope, err := h.Tenants().Resolve(ctx, p, in.OrganizationID)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		target, err := scope.ForWrite()
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		org = &target
	} else if strings.TrimSpace(in.OrganizationID) != "" {
		h.Fail(w, r, userstore.ErrSuperadminOrg)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		h.Fail(w, r, apperr.Internal("hash password", err))
		return
	}
	u, err := userstore.New(h.DB).Create(ctx, models.User{
		OrganizationID: org,
		Username:       in.Username,
		FullName:       in.FullName,
		Email:          in.Email,
		Phone:          in.Phone,
		LicenseNumber:  in.LicenseNumber,
		Role:           role,
		PasswordHash:   hash,
		Active:         true,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.UserCreated(ctx, r, p, u)
	httpjson.OK(w, u)
}
