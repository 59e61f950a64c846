// internal/app/features/services/handler.go
package services

import (
	"context"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	servicestore "github.com/dalemusser/flotahub/internal/app/store/services"
	turnostore "github.com/dalemusser/flotahub/internal/app/store/turnos"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/idempotency"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/turnostate"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errKeyTaken answers a taxista replaying a client_uuid that another
// taxista's trip already holds.
var errKeyTaken = apperr.Validation("client_uuid is already used by another trip in your organization")

// DefaultSyncMaxItems bounds POST /services/sync when no limit is configured.
const DefaultSyncMaxItems = 500

// Handler serves the trip endpoints, including offline batch sync.
type Handler struct {
	*shared.Env
	SyncMaxItems int
}

// NewHandler constructs a services Handler. syncMax <= 0 selects
// DefaultSyncMaxItems.
func NewHandler(env *shared.Env, syncMax int) *Handler {
	if syncMax <= 0 {
		syncMax = DefaultSyncMaxItems
	}
	return &Handler{Env: env, SyncMaxItems: syncMax}
}

func (h *Handler) store() *servicestore.Store {
	return servicestore.New(h.DB)
}

func (h *Handler) engine() *idempotency.Engine {
	return idempotency.New(h.store())
}

func (h *Handler) gate() *turnostate.Gate {
	return turnostate.NewGate(turnostore.New(h.DB))
}

// ownedBy reports whether p may see s under the own-only rule.
func (h *Handler) ownedBy(p *auth.Principal, s models.Service) bool {
	return !authz.OwnOnly(p.Role, authz.Services) || s.TaxistaID == p.UserID
}

// load fetches a service in scope; taxistas only see their own.
func (h *Handler) load(ctx context.Context, scope tenant.Scope, p *auth.Principal, id primitive.ObjectID) (models.Service, error) {
	s, err := h.store().GetByID(ctx, scope, id)
	if err != nil {
		return models.Service{}, err
	}
	if !h.ownedBy(p, s) {
		return models.Service{}, servicestore.ErrNotFound
	}
	return s, nil
}
