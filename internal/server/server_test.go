package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/accountsvc/apiserver/config"
	"github.com/accountsvc/apiserver/internal/auth"
	"github.com/accountsvc/apiserver/internal/ids"
	"github.com/accountsvc/apiserver/internal/services"
	"github.com/accountsvc/apiserver/internal/store"
	"github.com/accountsvc/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mapStore struct {
	mu      sync.Mutex
	records []types.AccountRecord
}

func (m *mapStore) Insert(ctx context.Context, record types.AccountRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.Email == record.Email {
			return store.ErrDuplicate
		}
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mapStore) find(match func(types.AccountRecord) bool) (types.AccountRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if match(r) {
			return r, nil
		}
	}
	return types.AccountRecord{}, store.ErrNotFound
}

func (m *mapStore) FindByEmail(ctx context.Context, email string) (types.AccountRecord, error) {
	return m.find(func(r types.AccountRecord) bool { return r.Email == email })
}

func (m *mapStore) FindByID(ctx context.Context, id string) (types.AccountRecord, error) {
	return m.find(func(r types.AccountRecord) bool { return r.ID == id })
}

func (m *mapStore) ListAll(ctx context.Context) ([]types.AccountRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.AccountRecord(nil), m.records...), nil
}

func (m *mapStore) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mapStore) promote(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].Email == email {
			m.records[i].Role = types.RoleAdmin
		}
	}
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func tokenFrom(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAccountLifecycle(t *testing.T) {
	accounts := &mapStore{}
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	svc := services.NewAccountService(accounts, ids.NewUUIDGenerator(), auth.NewBcryptHasher(bcrypt.MinCost), tokens)
	router := NewRouter(svc, zerolog.Nop())

	rec := call(t, router, http.MethodPost, "/accounts/signup", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "pw123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	anaToken := tokenFrom(t, rec)

	rec = call(t, router, http.MethodPost, "/accounts/signup", "", map[string]string{
		"name": "Ana again", "email": "ana@x.com", "password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPost, "/accounts/signup", "", map[string]string{
		"name": "Root", "email": "root@x.com", "password": "rootpw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	accounts.promote("root@x.com")

	rec = call(t, router, http.MethodPost, "/accounts/login", "", map[string]string{
		"email": "root@x.com", "password": "rootpw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	adminToken := tokenFrom(t, rec)

	rec = call(t, router, http.MethodPost, "/accounts/login", "", map[string]string{
		"email": "root@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPost, "/accounts/login", "", map[string]string{
		"email": "ghost@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, router, http.MethodGet, "/accounts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var views []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&views))
	require.Len(t, views, 2)
	for _, v := range views {
		assert.NotContains(t, v, "password")
	}

	ana, ok := tokens.Verify(anaToken)
	require.True(t, ok)

	rec = call(t, router, http.MethodGet, "/accounts/"+ana.ID, anaToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, router, http.MethodDelete, "/accounts/"+ana.ID, anaToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, router, http.MethodGet, "/accounts/"+ana.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, router, http.MethodGet, "/accounts/"+ana.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view types.AccountView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, "ana@x.com", view.Email)
	assert.Equal(t, types.RoleNormal, view.Role)

	rec = call(t, router, http.MethodDelete, "/accounts/"+ana.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, router, http.MethodGet, "/accounts/"+ana.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, router, http.MethodDelete, "/accounts/"+ana.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRequiresJWTSecret(t *testing.T) {
	_, err := New(context.Background(), config.Config{}, zerolog.Nop())
	assert.EqualError(t, err, "JWT_SECRET is required")
}
