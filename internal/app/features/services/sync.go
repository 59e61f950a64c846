// internal/app/features/services/sync.go
package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/idempotency"
	"github.com/dalemusser/flotahub/internal/app/system/limits"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type syncRequest struct {
	OrganizationID string            `json:"organization_id"`
	Services       []json.RawMessage `json:"services"`
}

// requestedOrganizations collects every organization_id named by the batch
// and its items. Items that do not decode are left to the per-item error.
func requestedOrganizations(req syncRequest) []string {
	out := []string{req.OrganizationID}
	for _, raw := range req.Services {
		var item struct {
			OrganizationID string `json:"organization_id"`
		}
		if json.Unmarshal(raw, &item) == nil && item.OrganizationID != "" {
			out = append(out, item.OrganizationID)
		}
	}
	return out
}

type syncResult struct {
	Index      int                 `json:"index"`
	Status     idempotency.Status  `json:"status"`
	ServerID   *primitive.ObjectID `json:"server_id"`
	ClientUUID *string             `json:"client_uuid"`
	Detail     string              `json:"detail,omitempty"`
}

type syncError struct {
	Index      int     `json:"index"`
	ClientUUID *string `json:"client_uuid"`
	Detail     string  `json:"detail"`
}

type syncResponse struct {
	Results []syncResult `json:"results"`
	Errors  []syncError  `json:"errors"`
}

// HandleSync handles POST /services/sync. Items are processed in order and
// each gets its own result; a bad item never aborts the batch.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Services, authz.Create)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var req syncRequest
	if err := httpjson.DecodeLimit(r, &req, limits.MaxSyncBody); err != nil {
		h.Fail(w, r, err)
		return
	}
	if req.Services == nil {
		h.Fail(w, r, apperr.Validation("services is required"))
		return
	}
	if len(req.Services) > h.SyncMaxItems {
		h.Fail(w, r, apperr.Validationf("at most %d services per sync", h.SyncMaxItems))
		return
	}

	ctx, cancel := h.Context(r, timeouts.Batch(), "services sync")
	defer cancel()

	org, err := h.OwnOrganization(ctx, r, p, requestedOrganizations(req)...)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	if err := h.RequireFeature(ctx, org, models.FeatureOfflineSync); err != nil {
		h.Fail(w, r, err)
		return
	}

	items := make([]idempotency.Item, len(req.Services))
	for i, raw := range req.Services {
		items[i] = h.syncItem(p, org, raw)
	}
	results := h.engine().Sync(ctx, org, items)

	resp := syncResponse{Results: make([]syncResult, len(results)), Errors: []syncError{}}
	for i, res := range results {
		resp.Results[i] = syncResult{
			Index:      res.Index,
			Status:     res.Status,
			ServerID:   res.ServerID,
			ClientUUID: res.ClientUUID,
			Detail:     res.Detail,
		}
		if res.Status == idempotency.StatusError {
			if apperr.KindOf(res.Err) == apperr.KindInternal {
				h.Log.Error("sync item failed", zap.Int("index", res.Index), zap.Error(res.Err))
			}
			resp.Errors = append(resp.Errors, syncError{Index: res.Index, ClientUUID: res.ClientUUID, Detail: res.Detail})
		}
	}
	h.Log.Info("services synced",
		zap.String("organization_id", org.Hex()),
		zap.String("taxista_id", p.UserID.Hex()),
		zap.Int("items", len(items)),
		zap.Int("errors", len(resp.Errors)))
	httpjson.OK(w, resp)
}

// syncItem decodes one raw batch entry. A payload that does not decode is
// reported as that item's error; its client_uuid is still echoed when it
// can be read.
func (h *Handler) syncItem(p *auth.Principal, org primitive.ObjectID, raw json.RawMessage) idempotency.Item {
	var in serviceInput
	if err := json.Unmarshal(raw, &in); err != nil {
		var key struct {
			ClientUUID *string `json:"client_uuid"`
		}
		_ = json.Unmarshal(raw, &key)
		return idempotency.Item{
			ClientUUID: key.ClientUUID,
			Build: func(context.Context) (models.Service, error) {
				return models.Service{}, apperr.Validation("invalid service payload")
			},
		}
	}
	return idempotency.Item{ClientUUID: in.ClientUUID, Build: h.builder(p, org, in)}
}
