package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/flotahub/internal/app/features/health"
	"github.com/dalemusser/flotahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Cache    string `json:"cache"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "connected", body.Database)
	assert.Empty(t, body.Cache)
}

func TestServe_CacheDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), pinger{err: errors.New("connection refused")}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Status string `json:"status"`
		Cache  string `json:"cache"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "disconnected", body.Cache)
}
