// internal/app/features/organizations/features.go
package organizations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"github.com/dalemusser/flotahub/internal/domain/models"
)

type featuresInput struct {
	Features map[string]json.RawMessage `json:"features"`
}

// parseFeatures accepts only known flag keys with boolean values. Keys are
// checked in sorted order so the reported key is stable.
func parseFeatures(raw map[string]json.RawMessage) (models.Features, error) {
	if len(raw) == 0 {
		return nil, apperr.Validation("features must contain at least one flag")
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(models.Features, len(raw))
	for _, k := range keys {
		if !models.IsKnownFeature(k) {
			return nil, apperr.Validationf("unknown feature %q", k)
		}
		switch v := bytes.TrimSpace(raw[k]); string(v) {
		case "true":
			out[k] = true
		case "false":
			out[k] = false
		default:
			return nil, apperr.Validationf("feature %q must be a boolean", k)
		}
	}
	return out, nil
}

// HandleFeatures handles PUT /superadmin/organizations/{id}/features. The
// payload is merged into the stored flags; flags it does not name keep
// their values.
func (h *Handler) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.Organizations, authz.Update)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	id, err := shared.PathID(r, "id")
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	var in featuresInput
	if err := httpjson.Decode(r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}
	changes, err := parseFeatures(in.Features)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Short(), "organization features")
	defer cancel()

	org, err := h.Organizations().MergeFeatures(ctx, id, changes)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.Audit.OrgFeaturesSet(ctx, r, p, org.ID, changes)
	httpjson.OK(w, org)
}
