// internal/app/features/turnos/handler.go
package turnos

import (
	"context"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	turnostore "github.com/dalemusser/flotahub/internal/app/store/turnos"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/turnostate"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler serves the shift endpoints.
type Handler struct {
	*shared.Env
}

func NewHandler(env *shared.Env) *Handler {
	return &Handler{Env: env}
}

func (h *Handler) store() *turnostore.Store {
	return turnostore.New(h.DB)
}

func (h *Handler) gate() *turnostate.Gate {
	return turnostate.NewGate(h.store())
}

// load fetches a turno in scope. Taxistas only see their own; anyone
// else's turno looks absent to them.
func (h *Handler) load(ctx context.Context, scope tenant.Scope, p *auth.Principal, id primitive.ObjectID) (models.Turno, error) {
	t, err := h.store().GetByID(ctx, scope, id)
	if err != nil {
		return models.Turno{}, err
	}
	if authz.OwnOnly(p.Role, authz.Turnos) && t.TaxistaID != p.UserID {
		return models.Turno{}, turnostore.ErrNotFound
	}
	return t, nil
}
