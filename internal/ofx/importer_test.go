package ofx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCreator struct {
	CreateFn func(ctx context.Context, in model.MovementInput) (model.Movement, error)
	calls    []model.MovementInput
	mu       sync.Mutex
}

func (m *mockCreator) Create(ctx context.Context, in model.MovementInput) (model.Movement, error) {
	m.mu.Lock()
	m.calls = append(m.calls, in)
	id := int64(len(m.calls))
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, in)
	}
	return model.Movement{ID: id, Description: in.Description, Amount: in.Amount}, nil
}

func drafts(n int) []Draft {
	out := make([]Draft, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Draft{Input: model.MovementInput{
			Description:  "line",
			Amount:       decimal.NewFromInt(int64(i + 1)),
			MovementType: model.MovementExpense,
			Currency:     model.CurrencyARS,
			Date:         "2024-10-01",
			CategoryID:   1,
		}})
	}
	return out
}

func TestImporter_Import(t *testing.T) {
	creator := &mockCreator{}
	im := NewImporter(creator, 0)

	var progress []int
	im.OnProgress = func(done, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	}

	res, err := im.Import(context.Background(), drafts(3))
	require.NoError(t, err)

	assert.Len(t, res.Created, 3)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Len(t, creator.calls, 3)
}

func TestImporter_CollectsFailures(t *testing.T) {
	creator := &mockCreator{
		CreateFn: func(_ context.Context, in model.MovementInput) (model.Movement, error) {
			if in.Amount.Equal(decimal.NewFromInt(2)) {
				return model.Movement{}, &common.APIError{Kind: common.ErrServer, Status: 400, Message: "Categoría no encontrada"}
			}
			return model.Movement{ID: 1}, nil
		},
	}

	res, err := NewImporter(creator, 0).Import(context.Background(), drafts(3))
	require.NoError(t, err)

	assert.Len(t, res.Created, 2)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, common.ErrServer)
}

func TestImporter_StopsOnSessionOrTransportFailure(t *testing.T) {
	for _, kind := range []error{common.ErrUnauthorized, common.ErrBackendUnavailable} {
		t.Run(kind.Error(), func(t *testing.T) {
			creator := &mockCreator{
				CreateFn: func(context.Context, model.MovementInput) (model.Movement, error) {
					return model.Movement{}, &common.APIError{Kind: kind}
				},
			}

			res, err := NewImporter(creator, 0).Import(context.Background(), drafts(5))

			require.Error(t, err)
			assert.True(t, errors.Is(err, kind))
			assert.Empty(t, res.Created)
			assert.Len(t, creator.calls, 1)
		})
	}
}

func TestImporter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	creator := &mockCreator{}
	_, err := NewImporter(creator, 5).Import(ctx, drafts(2))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, creator.calls)
}
