// internal/app/system/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PrincipalLoader reloads a principal from storage so role, organization
// and active-flag changes take effect on the next request. It returns nil
// for unknown or inactive users.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID primitive.ObjectID) (*Principal, error)
}

// Middleware authenticates bearer tokens.
type Middleware struct {
	tokens *Tokens
	loader PrincipalLoader
	log    *zap.Logger
}

// NewMiddleware constructs the bearer-token middleware.
func NewMiddleware(tokens *Tokens, loader PrincipalLoader, log *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, loader: loader, log: log}
}

// RequireAuth rejects requests without a valid token with 401 and injects
// the principal otherwise.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			httpjson.Error(w, r, m.log, apperr.Unauthorized("not authenticated"))
			return
		}
		uid, _, err := m.tokens.Parse(token)
		if err != nil {
			httpjson.Error(w, r, m.log, apperr.Unauthorized("invalid or expired token"))
			return
		}
		p, err := m.loader.LoadPrincipal(r.Context(), uid)
		if err != nil {
			httpjson.Error(w, r, m.log, apperr.Internal("load principal", err))
			return
		}
		if p == nil {
			httpjson.Error(w, r, m.log, apperr.Unauthorized("user not found or inactive"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
