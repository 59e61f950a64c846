// internal/app/features/turnos/routes.go
package turnos

import (
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the shift routes under "/turnos".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.Turnos, authz.Read, h.Log))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/active", h.ServeActive)
	r.Get("/{id}", h.ServeView)
	r.Put("/{id}/finalizar", h.HandleFinalize)
	r.Put("/{id}/liquidar", h.HandleLiquidate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
