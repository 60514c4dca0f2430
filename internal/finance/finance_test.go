package finance

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/mockbackend"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/Veraticus/finanzas/internal/session"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend   *mockbackend.Server
	store     *session.Store
	service   *Service
	redirects []string
	mu        sync.Mutex
}

func (f *fixture) redirectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.redirects)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend, ts := mockbackend.NewTestServer(t)
	f := &fixture{backend: backend}

	f.store = session.NewStore(session.NewMemoryBackend())
	token := backend.IssueToken("admin")
	require.NoError(t, f.store.Save(context.Background(), token, model.User{Username: "admin"}))

	client, err := api.NewClient(api.Config{BaseURL: ts.URL}, f.store, api.NavigatorFunc(func(reason string) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.redirects = append(f.redirects, reason)
	}))
	require.NoError(t, err)

	f.service = NewService(client)
	return f
}

func respond(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		mockbackend.WriteJSON(w, status, body)
	}
}

func intPtr(v int) *int { return &v }

func decodeBody(t *testing.T, call mockbackend.Call) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(call.Body, &body))
	return body
}
