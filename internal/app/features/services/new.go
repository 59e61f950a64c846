// internal/app/features/services/new.go
package services

import (
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/idempotency"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
)

// HandleCreate handles POST /services. With a client_uuid the first write
// wins and retries get the stored record back; without one every call
// creates a new trip.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Services, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	// Payload rules run inside the build step so a retry is answered from
	// the stored record even if the client changed the body.
	var in serviceInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Medium(), "service create")
	defer cancel()

	org, err := h.OwnOrganization(ctx, r, p, in.OrganizationID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	svc, status, err := h.engine().Create(ctx, org, in.ClientUUID, h.builder(p, org, in))
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if status == idempotency.StatusExisting && !h.ownedBy(p, svc) {
		h.Fail(w, r, errKeyTaken)
		return
	}
	httpjson.OK(w, svc)
}
