package finance

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/go-playground/validator/v10"
)

const balancePath = "/api/balance/me"

// Balance is the client for the signed-in user's balance.
type Balance struct {
	client   *api.Client
	validate *validator.Validate
}

// NewBalance creates a balance client on top of the pipeline.
func NewBalance(client *api.Client) *Balance {
	return &Balance{client: client, validate: newValidator()}
}

// GetMine fetches the current balance. It uses the short health deadline
// since the dashboard blocks on it.
func (b *Balance) GetMine(ctx context.Context) (model.UserBalance, error) {
	var wire balanceWire
	if err := b.client.DoJSON(ctx, api.Request{
		Method:  http.MethodGet,
		Path:    balancePath,
		Timeout: b.client.HealthTimeout(),
	}, &wire); err != nil {
		return model.UserBalance{}, fmt.Errorf("failed to get balance: %w", err)
	}
	if err := checkResponse(b.validate, wire); err != nil {
		return model.UserBalance{}, fmt.Errorf("failed to get balance: %w", err)
	}
	return wire.toModel(), nil
}
