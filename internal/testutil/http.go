package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/flotahub/internal/app/system/auth"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// PrincipalFor builds the principal a logged-in u would carry.
func PrincipalFor(u models.User) *auth.Principal {
	return &auth.Principal{
		UserID:         u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
	}
}

// WithUser injects u's principal into r, bypassing token middleware.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestPrincipal(r, PrincipalFor(u))
}

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// JSONRequest builds a request with body encoded as JSON. A string body is
// sent verbatim.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes rec's body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// Detail extracts the {"detail": ...} message of an error response.
func Detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	DecodeJSON(t, rec, &body)
	return body.Detail
}
