package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/enrollment/internal/auth"
	"github.com/sakif/enrollment/internal/handler"
	"github.com/sakif/enrollment/internal/repository/sqlite"
	"github.com/sakif/enrollment/internal/service"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAccounts(store *sqlite.DB) *service.AccountService {
	return service.NewAccountService(store, store, auth.NewPasswordServiceWithCost(bcrypt.MinCost), discardLogger)
}

// newAPIRouter mounts the user resource the same way the server does.
func newAPIRouter(t *testing.T) http.Handler {
	t.Helper()
	h := handler.NewUserAPIHandler(newTestAccounts(newTestStore(t)), discardLogger)

	r := chi.NewRouter()
	for _, collection := range []string{"/api", "/api/"} {
		r.Get(collection, h.HandleList)
		r.Post(collection, h.HandleCreate)
	}
	r.Get("/api/{id}", h.HandleGet)
	r.Put("/api/{id}", h.HandleUpdate)
	r.Delete("/api/{id}", h.HandleDelete)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

const anaJSON = `{"user_id":7,"first_name":"Ana","last_name":"Lopez","email":"a@x.com","password":"password1"}`

func TestUserAPI_CreateGetDelete(t *testing.T) {
	api := newAPIRouter(t)

	rr := do(t, api, http.MethodPost, "/api", anaJSON)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[map[string]any](t, rr)
	assert.EqualValues(t, 7, created["user_id"])
	assert.NotContains(t, created, "password", "the hash must never be serialized")
	assert.NotContains(t, created, "PasswordHash")

	rr = do(t, api, http.MethodGet, "/api/7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[map[string]any](t, rr)
	assert.Equal(t, "Ana", got["first_name"])
	assert.Equal(t, "Lopez", got["last_name"])
	assert.Equal(t, "a@x.com", got["email"])

	rr = do(t, api, http.MethodDelete, "/api/7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]map[string]any](t, rr))

	rr = do(t, api, http.MethodGet, "/api/7", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Error)
}

func TestUserAPI_ListWithAndWithoutSlash(t *testing.T) {
	api := newAPIRouter(t)

	rr := do(t, api, http.MethodGet, "/api", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	require.Equal(t, http.StatusCreated, do(t, api, http.MethodPost, "/api/", anaJSON).Code)

	rr = do(t, api, http.MethodGet, "/api/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)
}

func TestUserAPI_Update(t *testing.T) {
	api := newAPIRouter(t)
	require.Equal(t, http.StatusCreated, do(t, api, http.MethodPost, "/api", anaJSON).Code)

	rr := do(t, api, http.MethodPut, "/api/7", `{"first_name":"Anita","email":"anita@x.com"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	updated := decode[map[string]any](t, rr)
	assert.Equal(t, "Anita", updated["first_name"])
	assert.Equal(t, "Lopez", updated["last_name"])
	assert.Equal(t, "anita@x.com", updated["email"])
}

func TestUserAPI_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantError  string
		wantField  string
	}{
		{"malformed json", http.MethodPost, "/api", `{"user_id":`, http.StatusBadRequest, "validation_error", "body"},
		{"missing fields", http.MethodPost, "/api", `{"user_id":8}`, http.StatusBadRequest, "validation_error", "email"},
		{"unknown field", http.MethodPost, "/api", `{"user_id":8,"role":"admin"}`, http.StatusBadRequest, "validation_error", "body"},
		{"duplicate id", http.MethodPost, "/api", strings.Replace(anaJSON, "a@x.com", "b@x.com", 1), http.StatusConflict, "conflict", ""},
		{"duplicate email", http.MethodPost, "/api", strings.Replace(anaJSON, `"user_id":7`, `"user_id":8`, 1), http.StatusConflict, "conflict", ""},
		{"non-numeric id", http.MethodGet, "/api/abc", "", http.StatusBadRequest, "validation_error", "id"},
		{"zero id", http.MethodDelete, "/api/0", "", http.StatusBadRequest, "validation_error", "id"},
		{"update unknown user", http.MethodPut, "/api/99", `{"first_name":"X"}`, http.StatusNotFound, "not_found", ""},
		{"empty update", http.MethodPut, "/api/7", `{}`, http.StatusBadRequest, "validation_error", "body"},
		{"update user_id", http.MethodPut, "/api/7", `{"user_id":9}`, http.StatusBadRequest, "validation_error", "body"},
		{"delete unknown user", http.MethodDelete, "/api/99", "", http.StatusNotFound, "not_found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPIRouter(t)
			require.Equal(t, http.StatusCreated, do(t, api, http.MethodPost, "/api", anaJSON).Code)

			rr := do(t, api, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			resp := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotEmpty(t, resp.Message)
			if tt.wantField != "" {
				assert.Contains(t, resp.Fields, tt.wantField)
			}
		})
	}
}
