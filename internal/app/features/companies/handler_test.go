package companies_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/flotahub/internal/app/features/companies"
	"github.com/dalemusser/flotahub/internal/app/features/shared"
	"github.com/dalemusser/flotahub/internal/domain/models"
	"github.com/dalemusser/flotahub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*companies.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return companies.NewHandler(&shared.Env{DB: db, Log: zap.NewNop()}), testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	norte := fx.CreateOrganization(ctx, "Norte")
	sur := fx.CreateOrganization(ctx, "Sur")
	adminN := fx.CreateAdmin(ctx, "gestor-n", norte.ID)
	adminS := fx.CreateAdmin(ctx, "gestor-s", sur.ID)

	post := func(u models.User, body any) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, testutil.WithUser(testutil.JSONRequest(t, http.MethodPost, "/companies", body), u))
		return rec
	}

	rec := post(adminN, map[string]any{"numero_cliente": " C-001 ", "nombre": "Hotel <b>Sol</b>"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var c models.Company
	testutil.DecodeJSON(t, rec, &c)
	assert.Equal(t, "C-001", c.NumeroCliente)
	assert.Equal(t, "Hotel Sol", c.Nombre)
	assert.Equal(t, norte.ID, c.OrganizationID)

	assert.Equal(t, http.StatusOK, post(adminS, map[string]any{"numero_cliente": "C-001", "nombre": "Otro"}).Code,
		"same number in another organization")

	rec = post(adminN, map[string]any{"numero_cliente": "C-001", "nombre": "Duplicado"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "client number already exists in your organization", testutil.Detail(t, rec))

	assert.Equal(t, http.StatusBadRequest, post(adminN, map[string]any{"nombre": "Sin numero"}).Code)
	assert.Equal(t, http.StatusBadRequest,
		post(adminN, map[string]any{"numero_cliente": "C-9", "nombre": "X", "email": "not-an-email"}).Code)
}

func TestHandleEditAndDelete(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	org := fx.CreateOrganization(ctx, "Norte")
	admin := fx.CreateAdmin(ctx, "gestor", org.ID)
	taxista := fx.CreateTaxista(ctx, "ana", org.ID)
	first := fx.CreateCompany(ctx, org.ID, "C-1", "Hotel Sol")
	second := fx.CreateCompany(ctx, org.ID, "C-2", "Clinica Mar")

	edit := func(u models.User, id string, body any) *httptest.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.JSONRequest(t, http.MethodPut, "/companies/"+id, body), "id", id)
		rec := httptest.NewRecorder()
		h.HandleEdit(rec, testutil.WithUser(req, u))
		return rec
	}
	rec := edit(admin, second.ID.Hex(), map[string]any{"nombre": "Clínica del Mar"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, edit(admin, second.ID.Hex(), map[string]any{"numero_cliente": "C-1"}).Code,
		"renumbering onto an existing client")
	assert.Equal(t, http.StatusForbidden, edit(taxista, second.ID.Hex(), map[string]any{"nombre": "X"}).Code)

	del := func(id string) int {
		req := testutil.WithChiURLParam(httptest.NewRequest(http.MethodDelete, "/companies/"+id, nil), "id", id)
		rec := httptest.NewRecorder()
		h.HandleDelete(rec, testutil.WithUser(req, admin))
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, del(first.ID.Hex()))
	assert.Equal(t, http.StatusNotFound, del(first.ID.Hex()))
}
