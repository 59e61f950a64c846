// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under "/audit".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.AuditEvents, authz.Read, h.Log))
	r.Get("/", h.ServeList)
	return r
}
