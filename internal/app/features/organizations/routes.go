// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the superadmin organization routes (typically under
// "/superadmin/organizations"). The router expects an authenticated
// principal; every handler re-checks its own permission.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Organizations, authz.Read, h.Log))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)
	r.Put("/{id}/features", h.HandleFeatures)

	return r
}

// MineRoutes mounts GET / for the caller's own organization (typically
// under "/organization/me").
func MineRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMine)
	return r
}
