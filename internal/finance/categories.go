package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/go-playground/validator/v10"
)

const categoriesPath = "/api/v1/finanzas/categorias"

// Categories is the client for the category resource.
type Categories struct {
	client   *api.Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCategories creates a category client on top of the pipeline.
func NewCategories(client *api.Client) *Categories {
	return &Categories{
		client:   client,
		validate: newValidator(),
		logger:   slog.Default().With("component", "categories"),
	}
}

// List returns every category of the signed-in user.
func (c *Categories) List(ctx context.Context) ([]model.Category, error) {
	resp, err := c.client.Do(ctx, api.Request{Method: http.MethodGet, Path: categoriesPath})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var raw json.RawMessage
	if err := api.Decode(resp, &raw); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var items []categoryWire
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", &common.APIError{
			Kind:    common.ErrServer,
			Status:  resp.Status,
			Message: "expected a list of categories",
			Err:     err,
		})
	}
	if err := checkResponse(c.validate, categoryListWire{Items: items}); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	out := make([]model.Category, 0, len(items))
	for _, w := range items {
		out = append(out, w.toModel())
	}
	return out, nil
}

// Create adds a category.
func (c *Categories) Create(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	payload := categoryPayload(in)
	if err := checkInput(c.validate, payload); err != nil {
		return model.Category{}, err
	}

	cat, err := c.send(ctx, http.MethodPost, categoriesPath, payload)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	c.logger.Info("created category", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

// Update replaces a category's fields.
func (c *Categories) Update(ctx context.Context, id int64, in model.CategoryInput) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, &common.ValidationError{Fields: map[string]string{"id": "must be set"}}
	}
	payload := categoryPayload(in)
	if err := checkInput(c.validate, payload); err != nil {
		return model.Category{}, err
	}

	cat, err := c.send(ctx, http.MethodPut, idPath(categoriesPath, id), payload)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	return cat, nil
}

// Delete removes a category. What happens to movements that reference it is
// up to the backend; a refusal surfaces as a server error with its message.
func (c *Categories) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return &common.ValidationError{Fields: map[string]string{"id": "must be set"}}
	}
	if _, err := c.client.Do(ctx, api.Request{Method: http.MethodDelete, Path: idPath(categoriesPath, id)}); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	c.logger.Info("deleted category", "id", id)
	return nil
}

func (c *Categories) send(ctx context.Context, method, path string, payload categoryPayload) (model.Category, error) {
	var wire categoryWire
	if err := c.client.DoJSON(ctx, api.Request{Method: method, Path: path, Body: payload}, &wire); err != nil {
		return model.Category{}, err
	}
	if err := checkResponse(c.validate, wire); err != nil {
		return model.Category{}, err
	}
	return wire.toModel(), nil
}
