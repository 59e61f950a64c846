// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user routes (typically under "/users"). Every role can
// read; writes are limited to superadmins and admins by the handlers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Users, authz.Read, h.Log))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
