// internal/app/features/services/routes.go
package services

import (
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the trip routes under "/services".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Services, authz.Read, h.Log))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/sync", h.HandleSync)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
