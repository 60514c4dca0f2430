package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Veraticus/finanzas/internal/common"
)

// CheckHealth checks the backend: the actuator health endpoint first, then
// the root path. It returns nil when either answers 2xx. Transport failures
// are returned straight away since the second request would hit the same host.
func (c *Client) CheckHealth(ctx context.Context) error {
	_, err := c.Do(ctx, Request{
		Method:    http.MethodGet,
		Path:      "/actuator/health",
		Timeout:   c.healthTimeout,
		Anonymous: true,
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrServer) && !errors.Is(err, common.ErrUnauthorized) {
		return err
	}

	c.logger.Debug("actuator health check failed, trying root", "error", err)

	_, err = c.Do(ctx, Request{
		Method:    http.MethodGet,
		Path:      "/",
		Timeout:   c.healthTimeout,
		Anonymous: true,
	})
	return err
}
