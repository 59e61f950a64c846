// internal/app/features/companies/routes.go
package companies

import (
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the company routes under "/companies".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Companies, authz.Read, h.Log))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
