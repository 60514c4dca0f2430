package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/finance"
	"github.com/Veraticus/finanzas/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	LoadOverviewFn func(ctx context.Context, filters *model.MovementFilters) (finance.Overview, error)
	calls          []model.MovementFilters
	mu             sync.Mutex
}

func (l *mockLoader) LoadOverview(ctx context.Context, filters *model.MovementFilters) (finance.Overview, error) {
	l.mu.Lock()
	l.calls = append(l.calls, *filters)
	l.mu.Unlock()
	if l.LoadOverviewFn != nil {
		return l.LoadOverviewFn(ctx, filters)
	}
	return sampleOverview(*filters.Page, 3), nil
}

func (l *mockLoader) lastCall(t *testing.T) model.MovementFilters {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotEmpty(t, l.calls)
	return l.calls[len(l.calls)-1]
}

func sampleOverview(page, totalPages int) finance.Overview {
	return finance.Overview{
		Categories: []model.Category{{ID: 1, Name: "Comida", Emoji: "🍔"}},
		Balance: model.UserBalance{
			ARSAmount: decimal.RequireFromString("150000.75"),
			USDAmount: decimal.NewFromInt(1200),
		},
		Page: model.MovementPage{
			Movements: []model.Movement{{
				ID:           42,
				Description:  "Supermercado",
				Amount:       decimal.RequireFromString("1234.5"),
				MovementType: model.MovementExpense,
				Currency:     model.CurrencyARS,
				Date:         "2024-10-03",
				Category:     model.MovementCategory{ID: 1, Name: "Comida", Emoji: "🍔"},
			}},
			Number:        page,
			Size:          20,
			TotalPages:    totalPages,
			TotalElements: int64(totalPages * 20),
		},
	}
}

// execLoad runs cmd and returns the load result it produces, if any.
func execLoad(t *testing.T, cmd tea.Cmd) overviewLoadedMsg {
	t.Helper()
	require.NotNil(t, cmd)

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if loaded, ok := c().(overviewLoadedMsg); ok {
				return loaded
			}
		}
		t.Fatal("batch did not contain a load command")
	}
	loaded, ok := msg.(overviewLoadedMsg)
	require.True(t, ok, "unexpected message %T", msg)
	return loaded
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// ready returns a model that finished its first load.
func ready(t *testing.T, loader *mockLoader) Model {
	t.Helper()
	m := New(context.Background(), loader, WithPageSize(20))
	next, _ := m.Update(execLoad(t, m.Init()))
	m = next.(Model)
	require.Equal(t, StateReady, m.State())
	return m
}

func press(t *testing.T, m Model, r rune) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(keyPress(r))
	return next.(Model), cmd
}

func TestModel_InitialLoad(t *testing.T) {
	loader := &mockLoader{}
	m := New(context.Background(), loader)
	assert.Equal(t, StateLoading, m.State())
	assert.Contains(t, m.View(), "Loading")

	next, _ := m.Update(execLoad(t, m.Init()))
	m = next.(Model)

	assert.Equal(t, StateReady, m.State())
	call := loader.lastCall(t)
	assert.Equal(t, 0, *call.Page)
	assert.Equal(t, 20, *call.Size)
	assert.Empty(t, call.Type)

	view := m.View()
	assert.Contains(t, view, "Supermercado")
	assert.Contains(t, view, "$ 150.000,75")
	assert.Contains(t, view, "US$ 1.200,00")
	assert.Contains(t, view, "page 1 of 3")
}

func TestModel_Paging(t *testing.T) {
	loader := &mockLoader{}
	m := ready(t, loader)

	m, cmd := press(t, m, 'p')
	assert.Nil(t, cmd, "no previous page on the first page")
	assert.Equal(t, StateReady, m.State())

	m, cmd = press(t, m, 'n')
	assert.Equal(t, StateLoading, m.State())
	next, _ := m.Update(execLoad(t, cmd))
	m = next.(Model)
	assert.Equal(t, 1, *loader.lastCall(t).Page)
	assert.Contains(t, m.View(), "page 2 of 3")

	m, cmd = press(t, m, 'n')
	next, _ = m.Update(execLoad(t, cmd))
	m = next.(Model)
	assert.Equal(t, 2, *loader.lastCall(t).Page)

	_, cmd = press(t, m, 'n')
	assert.Nil(t, cmd, "no next page on the last page")

	m, cmd = press(t, m, 'p')
	next, _ = m.Update(execLoad(t, cmd))
	m = next.(Model)
	assert.Equal(t, 1, *loader.lastCall(t).Page)
	assert.Equal(t, StateReady, m.State())
}

func TestModel_CycleTypeFilter(t *testing.T) {
	loader := &mockLoader{}
	m := ready(t, loader)

	want := []model.MovementType{model.MovementIncome, model.MovementExpense, ""}
	for _, typ := range want {
		var cmd tea.Cmd
		m, cmd = press(t, m, 't')
		next, _ := m.Update(execLoad(t, cmd))
		m = next.(Model)

		call := loader.lastCall(t)
		assert.Equal(t, typ, call.Type)
		assert.Equal(t, 0, *call.Page, "changing the filter restarts from the first page")
	}
}

func TestModel_LoadFailures(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		wantView  string
		wantState State
		canRetry  bool
	}{
		{
			name:      "unauthorized",
			err:       &common.APIError{Kind: common.ErrUnauthorized, Status: 401},
			wantState: StateLoggedOut,
			wantView:  "finanzas login",
		},
		{
			name:      "backend unavailable",
			err:       &common.APIError{Kind: common.ErrBackendUnavailable},
			wantState: StateUnavailable,
			wantView:  "Backend unavailable",
			canRetry:  true,
		},
		{
			name:      "timeout",
			err:       &common.APIError{Kind: common.ErrTimeout},
			wantState: StateUnavailable,
			wantView:  "Press r to retry",
			canRetry:  true,
		},
		{
			name:      "server error",
			err:       &common.APIError{Kind: common.ErrServer, Status: 500, Message: "boom"},
			wantState: StateFailed,
			wantView:  "boom",
			canRetry:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &mockLoader{
				LoadOverviewFn: func(context.Context, *model.MovementFilters) (finance.Overview, error) {
					return finance.Overview{}, tt.err
				},
			}
			m := New(context.Background(), loader)
			next, _ := m.Update(execLoad(t, m.Init()))
			m = next.(Model)

			assert.Equal(t, tt.wantState, m.State())
			assert.ErrorIs(t, m.Err(), tt.err)
			assert.Contains(t, m.View(), tt.wantView)

			m, cmd := press(t, m, 'r')
			if tt.canRetry {
				assert.Equal(t, StateLoading, m.State())
				assert.NotNil(t, cmd)
			} else {
				assert.Nil(t, cmd)
				assert.Equal(t, StateLoggedOut, m.State())
			}
		})
	}
}

func TestModel_RetryRecovers(t *testing.T) {
	fail := true
	loader := &mockLoader{
		LoadOverviewFn: func(_ context.Context, f *model.MovementFilters) (finance.Overview, error) {
			if fail {
				return finance.Overview{}, &common.APIError{Kind: common.ErrBackendUnavailable}
			}
			return sampleOverview(*f.Page, 1), nil
		},
	}
	m := New(context.Background(), loader)
	next, _ := m.Update(execLoad(t, m.Init()))
	m = next.(Model)
	require.Equal(t, StateUnavailable, m.State())

	fail = false
	m, cmd := press(t, m, 'r')
	next, _ = m.Update(execLoad(t, cmd))
	m = next.(Model)

	assert.Equal(t, StateReady, m.State())
	assert.NoError(t, m.Err())
}

func TestModel_StaleResponseIgnored(t *testing.T) {
	loader := &mockLoader{}
	m := ready(t, loader)

	m, first := press(t, m, 'r')
	m, second := press(t, m, 'r')
	stale := execLoad(t, first)
	fresh := execLoad(t, second)

	next, _ := m.Update(stale)
	m = next.(Model)
	assert.Equal(t, StateLoading, m.State(), "superseded response must not finish the load")

	next, _ = m.Update(fresh)
	m = next.(Model)
	assert.Equal(t, StateReady, m.State())
}

func TestModel_KeysIgnoredWhileLoading(t *testing.T) {
	m := New(context.Background(), &mockLoader{})

	for _, r := range []rune{'n', 'p', 't', 'r'} {
		next, cmd := press(t, m, r)
		assert.Nil(t, cmd)
		assert.Equal(t, StateLoading, next.State())
	}
}

func TestModel_Quit(t *testing.T) {
	m := ready(t, &mockLoader{})

	m, cmd := press(t, m, 'q')
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_WindowResize(t *testing.T) {
	m := ready(t, &mockLoader{})

	next, cmd := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, 160, m.width)
	assert.Equal(t, 38, m.table.Height())
}

func TestRun_RequiresLoader(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil))
}
