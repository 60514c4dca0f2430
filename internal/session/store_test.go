package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Veraticus/finanzas/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = model.User{ID: "1", Username: "admin", Email: "admin@example.com"}

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	file, err := NewFileBackend(filepath.Join(t.TempDir(), "finanzas", "session.json"))
	require.NoError(t, err)

	sqlite, err := NewSQLiteBackend(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			store := NewStore(backend)
			require.NoError(t, store.Save(ctx, "abc", testUser))
			assert.Equal(t, "abc", store.Token())

			restored := NewStore(backend)
			sess, err := restored.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, model.Session{Token: "abc", User: testUser}, sess)

			user, ok := restored.User()
			assert.True(t, ok)
			assert.Equal(t, testUser, user)

			require.NoError(t, restored.Clear(ctx))
			assert.Empty(t, restored.Token())

			_, hasToken, err := backend.Get(ctx, TokenKey)
			require.NoError(t, err)
			_, hasUser, err := backend.Get(ctx, UserKey)
			require.NoError(t, err)
			assert.False(t, hasToken)
			assert.False(t, hasUser)
		})
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	store := NewStore(NewMemoryBackend())

	sess, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.False(t, sess.Active())
}

func TestStore_LoadDiscardsHalfWrittenSession(t *testing.T) {
	tests := []struct {
		values map[string]string
		name   string
	}{
		{name: "token only", values: map[string]string{TokenKey: "abc"}},
		{name: "user only", values: map[string]string{UserKey: `{"username":"admin"}`}},
		{name: "corrupt user", values: map[string]string{TokenKey: "abc", UserKey: "{not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := NewMemoryBackend()
			require.NoError(t, backend.Set(ctx, tt.values))

			sess, err := NewStore(backend).Load(ctx)

			require.NoError(t, err)
			assert.False(t, sess.Active())
			assert.Zero(t, backend.Len())
		})
	}
}

func TestStore_SaveRejectsEmptyToken(t *testing.T) {
	store := NewStore(NewMemoryBackend())

	err := store.Save(context.Background(), "", testUser)

	require.Error(t, err)
	assert.Empty(t, store.Token())
}

func TestStore_BalanceCache(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())
	balance := model.UserBalance{ID: 1, ARSAmount: decimal.NewFromInt(1000)}

	store.SetBalance(balance)
	_, ok := store.Balance()
	assert.False(t, ok, "balance is not cached without a session")

	require.NoError(t, store.Save(ctx, "abc", testUser))
	store.SetBalance(balance)
	got, ok := store.Balance()
	require.True(t, ok)
	assert.Equal(t, int64(1), got.ID)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Balance()
	assert.False(t, ok)
}

type failingBackend struct {
	*MemoryBackend
}

func (f failingBackend) Delete(context.Context, ...string) error {
	return errors.New("disk full")
}

func TestStore_ClearDropsMemoryEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	store := NewStore(failingBackend{NewMemoryBackend()})
	require.NoError(t, store.Save(ctx, "abc", testUser))

	err := store.Clear(ctx)

	require.Error(t, err)
	assert.Empty(t, store.Token())
}

func TestStore_ConcurrentReadersAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())
	require.NoError(t, store.Save(ctx, "abc", testUser))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := store.Token()
			assert.Contains(t, []string{"", "abc"}, tok)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = store.Clear(ctx)
	}()
	wg.Wait()

	assert.Empty(t, store.Token())
}
