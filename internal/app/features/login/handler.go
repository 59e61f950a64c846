// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/store/audit"
	userstore "github.com/dalemusser/flotahub/internal/app/store/users"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/ratelimit"
	"github.com/dalemusser/flotahub/internal/app/system/tenant"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.uber.org/zap"
)

var errBadCredentials = apperr.Unauthorized("invalid username or password")

type Handler struct {
	*shared.Env
	Tokens  *auth.Tokens
	Limiter *ratelimit.LoginLimiter
}

func NewHandler(env *shared.Env, tokens *auth.Tokens, limiter *ratelimit.LoginLimiter) *Handler {
	return &Handler{Env: env, Tokens: tokens, Limiter: limiter}
}

type loginInput struct {
	Username string `json:"username" validate:"required,max=100" label:"Username"`
	Password string `json:"password" validate:"required,max=200" label:"Password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        models.User `json:"user"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := shared.DecodeValid(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "login")
	defer cancel()

	if ok, reason := h.Limiter.Check(r, in.Username); !ok {
		h.Audit.LoginFailed(ctx, r, in.Username, nil, audit.EventLoginFailedRateLimit, reason)
		h.Fail(w, r, apperr.TooManyRequests(reason))
		return
	}

	u, err := userstore.New(h.DB).GetByUsername(ctx, in.Username)
	if errors.Is(err, userstore.ErrNotFound) {
		h.Audit.LoginFailed(ctx, r, in.Username, nil, audit.EventLoginFailedUserNotFound, "user not found")
		h.Fail(w, r, errBadCredentials)
		return
	}
	if err != nil {
		h.Fail(w, r, apperr.Internal("load user", err))
		return
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		h.Audit.LoginFailed(ctx, r, in.Username, &u, audit.EventLoginFailedWrongPassword, "wrong password")
		h.Fail(w, r, errBadCredentials)
		return
	}
	ok, err := userstore.CanSignIn(ctx, u, h.Organizations())
	if err != nil {
		h.Fail(w, r, apperr.Internal("check sign-in", err))
		return
	}
	if !ok {
		h.Audit.LoginFailed(ctx, r, in.Username, &u, audit.EventLoginFailedUserDisabled, "account disabled")
		h.Fail(w, r, apperr.Unauthorized("account is disabled"))
		return
	}

	token, err := h.Tokens.Issue(u)
	if err != nil {
		h.Fail(w, r, apperr.Internal("issue token", err))
		return
	}
	h.Limiter.ResetUsername(in.Username)
	h.Audit.LoginSuccess(ctx, r, u)
	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role.String()))

	httpjson.OK(w, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.Tokens.TTL().Seconds()),
		User:        u,
	})
}

// ServeMe handles GET /auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		h.Fail(w, r, apperr.Unauthorized("not authenticated"))
		return
	}
	ctx, cancel := h.Context(r, timeouts.Short(), "auth me")
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, tenant.Unscoped(), p.UserID)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	httpjson.OK(w, u)
}
