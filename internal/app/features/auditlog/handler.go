// internal/app/features/auditlog/handler.go
package auditlog

import "github.com/dalemusser/flotahub/internal/app/features/shared"

// Handler serves the audit trail to superadmins and organization admins.
type Handler struct {
	*shared.Env
}

// NewHandler constructs an audit log Handler.
func NewHandler(env *shared.Env) *Handler {
	return &Handler{Env: env}
}
