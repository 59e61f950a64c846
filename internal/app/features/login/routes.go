// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the auth routes (typically under "/auth"). requireAuth
// guards the routes that need a bearer token.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleLogin)
	r.With(requireAuth).Get("/me", h.ServeMe)
	return r
}
