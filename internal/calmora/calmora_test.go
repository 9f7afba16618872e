package calmora

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calmora/calmora-cli/internal/api"
	"github.com/calmora/calmora-cli/internal/session"
)

// fakeBackend is an in-process Calmora backend. Tests register the routes
// they need on mux.
type fakeBackend struct {
	mux   *http.ServeMux
	hits  atomic.Int32
	store *session.MemoryStore
	svc   *Service
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{mux: http.NewServeMux(), store: session.NewMemoryStore()}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.hits.Add(1)
		fb.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	fb.svc = New(api.New(server.URL, fb.store), nil)
	return fb
}

func (fb *fakeBackend) token(t *testing.T) string {
	t.Helper()
	tok, err := fb.store.Get(context.Background())
	if err != nil {
		return ""
	}
	return tok
}

func (fb *fakeBackend) login(t *testing.T, token string) {
	t.Helper()
	require.NoError(t, fb.store.Set(context.Background(), token))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireBearer rejects requests without the expected token like the backend does.
func requireBearer(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}
