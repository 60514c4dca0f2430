package finance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/mockbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_LoadOverview(t *testing.T) {
	f := newFixture(t)
	f.backend.Seed()

	ov, err := f.service.LoadOverview(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, ov.Categories, 3)
	assert.Len(t, ov.Page.Movements, 4)
	assert.Equal(t, int64(4), ov.Page.TotalElements)
	assert.Len(t, ov.Balance.StockHoldings, 2)

	assert.Equal(t, 1, f.backend.CallCount(http.MethodGet, categoriesPath))
	assert.Equal(t, 1, f.backend.CallCount(http.MethodGet, movementsPath))
	assert.Equal(t, 1, f.backend.CallCount(http.MethodGet, balancePath))
}

func TestService_LoadOverview_Failure(t *testing.T) {
	f := newFixture(t)
	f.backend.Seed()
	f.backend.Override(http.MethodGet, balancePath, respond(http.StatusInternalServerError, map[string]string{"error": "boom"}))

	_, err := f.service.LoadOverview(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServer)
	assert.NotEmpty(t, f.store.Token())
}

func TestService_LoadOverview_SiblingsRunToCompletion(t *testing.T) {
	f := newFixture(t)
	f.backend.Seed()

	categoriesDone := make(chan struct{})
	var movementsCanceled atomic.Bool

	f.backend.Override(http.MethodGet, categoriesPath, func(w http.ResponseWriter, _ *http.Request) {
		mockbackend.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		close(categoriesDone)
	})
	f.backend.Override(http.MethodGet, movementsPath, func(w http.ResponseWriter, r *http.Request) {
		<-categoriesDone
		// Leave the client time to react to the failed sibling.
		time.Sleep(50 * time.Millisecond)
		movementsCanceled.Store(r.Context().Err() != nil)
		mockbackend.WriteJSON(w, http.StatusOK, map[string]any{
			"content": []any{}, "number": 0, "size": 20, "totalPages": 0, "totalElements": 0,
		})
	})

	_, err := f.service.LoadOverview(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServer)
	assert.False(t, movementsCanceled.Load(), "a failed sibling must not cancel the movements request")
}

func TestService_LoadOverview_RejectionWinsOverEarlierFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.Seed()

	categoriesDone := make(chan struct{})
	f.backend.Override(http.MethodGet, categoriesPath, func(w http.ResponseWriter, _ *http.Request) {
		mockbackend.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		close(categoriesDone)
	})
	f.backend.Override(http.MethodGet, balancePath, func(w http.ResponseWriter, _ *http.Request) {
		<-categoriesDone
		time.Sleep(50 * time.Millisecond)
		mockbackend.WriteJSON(w, http.StatusForbidden, map[string]string{"message": "Token inválido o expirado"})
	})

	_, err := f.service.LoadOverview(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Empty(t, f.store.Token(), "the late 403 still clears the session")
	assert.Equal(t, 1, f.redirectCount())
}

func TestMostSignificant(t *testing.T) {
	server := &common.APIError{Kind: common.ErrServer, Status: 500}
	unavailable := &common.APIError{Kind: common.ErrBackendUnavailable}
	timeout := &common.APIError{Kind: common.ErrTimeout}
	rejected := fmt.Errorf("failed to load balance: %w", &common.APIError{Kind: common.ErrUnauthorized, Status: 401})
	other := errors.New("decode failed")

	tests := []struct {
		want error
		name string
		errs []error
	}{
		{name: "all succeeded", errs: []error{nil, nil, nil}, want: nil},
		{name: "single failure", errs: []error{nil, server, nil}, want: server},
		{name: "rejection beats server error", errs: []error{server, nil, rejected}, want: rejected},
		{name: "transport beats server error", errs: []error{server, unavailable, nil}, want: unavailable},
		{name: "unavailable beats timeout", errs: []error{timeout, unavailable, nil}, want: unavailable},
		{name: "unclassified comes last", errs: []error{other, nil, timeout}, want: timeout},
		{name: "only unclassified", errs: []error{nil, other, nil}, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mostSignificant(tt.errs))
		})
	}
}
