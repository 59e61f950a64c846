// internal/app/features/health/handler.go
// Package health serves the liveness and readiness check.
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Cache  Pinger
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. cache may be nil when the
// in-process cache is used.
func NewHandler(client *mongo.Client, cache Pinger, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Cache: cache, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// When Mongo or the shared cache does not answer: 503 and status "error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "connected"}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		httpjson.Write(w, http.StatusServiceUnavailable, resp)
		return
	}

	if h.Cache != nil {
		resp.Cache = "connected"
		if err := h.Cache.Ping(ctx); err != nil {
			h.Log.Error("health-check: cache ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Cache = "disconnected"
			resp.Message = "Cache unavailable"
			httpjson.Write(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	httpjson.OK(w, resp)
}
