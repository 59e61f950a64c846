// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/app/store/audit"
	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/authz"
	"github.com/dalemusser/flotahub/internal/app/system/httpjson"
	"github.com/dalemusser/flotahub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /audit. Admins see their own organization's events;
// superadmins see everything unless they pass organization_id.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, err := shared.Principal(r, authz.AuditEvents, authz.Read)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	filter, page, err := parseFilter(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.Context(r, timeouts.Long(), "audit log list")
	defer cancel()

	scope, err := h.Scope(ctx, r, p)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	filter.Scope = scope

	store := audit.New(h.DB)
	events, err := store.Query(ctx, filter)
	if err != nil {
		h.Fail(w, r, apperr.Internal("query audit events", err))
		return
	}
	total, err := store.CountByFilter(ctx, filter)
	if err != nil {
		h.Fail(w, r, apperr.Internal("count audit events", err))
		return
	}

	totalPages := int((total + filter.Limit - 1) / filter.Limit)
	if totalPages < 1 {
		totalPages = 1
	}
	httpjson.OK(w, listResponse{
		Items:      events,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		Categories: audit.Categories(),
	})
}

func parseFilter(r *http.Request) (audit.QueryFilter, int, error) {
	q := r.URL.Query()
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     pageSize,
	}
	if f.Category != "" && !slices.Contains(audit.Categories(), f.Category) {
		return f, 0, apperr.Validationf("unknown category %q", f.Category)
	}
	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return f, 0, apperr.Validation("invalid user_id")
		}
		f.UserID = &id
	}
	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, 0, apperr.Validation("start_date must be YYYY-MM-DD")
		}
		f.StartTime = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, 0, apperr.Validation("end_date must be YYYY-MM-DD")
		}
		// inclusive of the whole day
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &end
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return f, 0, apperr.Validation("end_date is before start_date")
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, 0, apperr.Validation("limit must be a positive integer")
		}
		f.Limit = int64(min(n, maxPageSize))
	}
	page := 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, 0, apperr.Validation("page must be a positive integer")
		}
		page = n
	}
	f.Offset = int64(page-1) * f.Limit
	return f, page, nil
}
