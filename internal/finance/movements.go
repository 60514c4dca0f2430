// Package finance holds the typed clients for the finance backend's
// resources. Every call goes through the api pipeline, so errors keep their
// classification (errors.Is against the common sentinels).
package finance

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/go-playground/validator/v10"
)

const movementsPath = "/api/movement"

// Movements is the client for the movement resource.
type Movements struct {
	client   *api.Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewMovements creates a movement client on top of the pipeline.
func NewMovements(client *api.Client) *Movements {
	return &Movements{
		client:   client,
		validate: newValidator(),
		logger:   slog.Default().With("component", "movements"),
	}
}

// List returns the movements of the requested page in server order. Paging
// metadata is dropped; use ListPage to keep it.
func (m *Movements) List(ctx context.Context, filters *model.MovementFilters) ([]model.Movement, error) {
	page, err := m.ListPage(ctx, filters)
	if err != nil {
		return nil, err
	}
	return page.Movements, nil
}

// ListPage returns one page of movements with its paging metadata.
func (m *Movements) ListPage(ctx context.Context, filters *model.MovementFilters) (model.MovementPage, error) {
	var wire movementPageWire
	if err := m.client.DoJSON(ctx, api.Request{
		Method: http.MethodGet,
		Path:   movementsPath,
		Query:  FilterQuery(filters),
	}, &wire); err != nil {
		return model.MovementPage{}, fmt.Errorf("failed to list movements: %w", err)
	}
	if err := checkResponse(m.validate, wire); err != nil {
		return model.MovementPage{}, fmt.Errorf("failed to list movements: %w", err)
	}

	page := model.MovementPage{
		Movements:     make([]model.Movement, 0, len(wire.Content)),
		Number:        wire.Number,
		Size:          wire.Size,
		TotalPages:    wire.TotalPages,
		TotalElements: wire.TotalElements,
	}
	for _, w := range wire.Content {
		page.Movements = append(page.Movements, w.toModel())
	}

	m.logger.Debug("listed movements",
		"count", len(page.Movements),
		"page", page.Number,
		"total_elements", page.TotalElements)

	return page, nil
}

// Create records a new movement. Invalid input fails with ErrValidation
// before any request is made.
func (m *Movements) Create(ctx context.Context, in model.MovementInput) (model.Movement, error) {
	payload := newMovementPayload(in)
	if err := checkInput(m.validate, payload); err != nil {
		return model.Movement{}, err
	}

	mv, err := m.send(ctx, http.MethodPost, movementsPath, payload)
	if err != nil {
		return model.Movement{}, fmt.Errorf("failed to create movement: %w", err)
	}
	m.logger.Info("created movement", "id", mv.ID, "type", mv.MovementType)
	return mv, nil
}

// Update replaces every field of an existing movement.
func (m *Movements) Update(ctx context.Context, id int64, in model.MovementInput) (model.Movement, error) {
	if id <= 0 {
		return model.Movement{}, &common.ValidationError{Fields: map[string]string{"id": "must be set"}}
	}
	payload := newMovementPayload(in)
	if err := checkInput(m.validate, payload); err != nil {
		return model.Movement{}, err
	}

	mv, err := m.send(ctx, http.MethodPut, idPath(movementsPath, id), payload)
	if err != nil {
		return model.Movement{}, fmt.Errorf("failed to update movement %d: %w", id, err)
	}
	m.logger.Info("updated movement", "id", mv.ID)
	return mv, nil
}

func (m *Movements) send(ctx context.Context, method, path string, payload movementPayload) (model.Movement, error) {
	var wire movementWire
	if err := m.client.DoJSON(ctx, api.Request{Method: method, Path: path, Body: payload}, &wire); err != nil {
		return model.Movement{}, err
	}
	if err := checkResponse(m.validate, wire); err != nil {
		return model.Movement{}, err
	}
	return wire.toModel(), nil
}

// FilterQuery encodes the set fields of filters as query parameters.
// A nil filter or an all-zero filter yields no parameters.
func FilterQuery(filters *model.MovementFilters) url.Values {
	q := url.Values{}
	if filters == nil {
		return q
	}
	if filters.StartDate != "" {
		q.Set("startDate", filters.StartDate)
	}
	if filters.EndDate != "" {
		q.Set("endDate", filters.EndDate)
	}
	if filters.CategoryID != 0 {
		q.Set("categoryId", strconv.FormatInt(filters.CategoryID, 10))
	}
	if filters.Type != "" {
		q.Set("type", string(filters.Type))
	}
	if filters.Page != nil {
		q.Set("page", strconv.Itoa(*filters.Page))
	}
	if filters.Size != nil {
		q.Set("size", strconv.Itoa(*filters.Size))
	}
	return q
}
