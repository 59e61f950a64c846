// internal/app/features/vehicles/handler.go
package vehicles

import "github.com/dalemusser/flotahub/internal/app/features/shared"

// Handler serves the fleet vehicle endpoints.
type Handler struct {
	*shared.Env
}

func NewHandler(env *shared.Env) *Handler {
	return &Handler{Env: env}
}
