// Package api is the request pipeline every backend call goes through. It
// attaches credentials, enforces per-request deadlines and classifies every
// outcome into one of the common failure kinds.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds domain calls.
	DefaultTimeout = 10 * time.Second
	// DefaultHealthTimeout bounds liveness and balance checks.
	DefaultHealthTimeout = 5 * time.Second

	maxResponseBytes = 10 << 20
)

// TokenStore is the slice of the session store the pipeline needs: it reads
// the token and, on 401/403, clears the session.
type TokenStore interface {
	Token() string
	Clear(ctx context.Context) error
}

// Navigator moves the application to its login entry point.
type Navigator interface {
	RedirectToLogin(reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason string)

// RedirectToLogin implements Navigator.
func (f NavigatorFunc) RedirectToLogin(reason string) { f(reason) }

// Config holds pipeline settings.
type Config struct {
	HTTPClient    *http.Client
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

// DefaultConfig returns a Config pointing at a local backend.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8080",
		Timeout:       DefaultTimeout,
		HealthTimeout: DefaultHealthTimeout,
		UserAgent:     "finanzas",
	}
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: backend base URL is required", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: backend base URL must be an absolute http(s) URL, got %q", common.ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 || c.HealthTimeout < 0 {
		return fmt.Errorf("%w: timeouts cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// Client sends requests to the backend. It is safe for concurrent use; each
// call is independent and nothing is retried, queued or deduplicated.
type Client struct {
	httpClient    *http.Client
	store         TokenStore
	navigator     Navigator
	logger        *slog.Logger
	baseURL       string
	userAgent     string
	timeout       time.Duration
	healthTimeout time.Duration
}

// NewClient builds a pipeline bound to a session store. navigator may be nil.
func NewClient(cfg Config, store TokenStore, navigator Navigator) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Deadlines come from the request context, not the client.
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient:    httpClient,
		store:         store,
		navigator:     navigator,
		logger:        slog.Default().With("component", "api"),
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:     cfg.UserAgent,
		timeout:       cfg.Timeout,
		healthTimeout: cfg.HealthTimeout,
	}, nil
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthTimeout is the short deadline used for health and balance checks.
func (c *Client) HealthTimeout() time.Duration {
	return c.healthTimeout
}

// Request describes one backend call.
type Request struct {
	Body   any
	Query  url.Values
	Method string
	// Path is appended to the base URL.
	Path string
	// URL, when set, is used verbatim instead of base URL + Path.
	URL string
	// Timeout overrides the default domain timeout.
	Timeout time.Duration
	// Anonymous requests carry no bearer token, and a 401/403 answer to
	// them is a plain rejection rather than a session invalidation.
	Anonymous bool
}

// Response is a successful (2xx) backend answer.
type Response struct {
	Header http.Header
	Body   []byte
	Status int
	// JSON reports whether the Content-Type announced a JSON body.
	JSON bool
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.Body)
}

// Do sends req and classifies the outcome. A non-nil error always wraps one
// of common.ErrUnauthorized, ErrServer, ErrBackendUnavailable or ErrTimeout,
// except when ctx itself is canceled by the caller.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.resolve(req)
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if !req.Anonymous {
		if token := c.store.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, method, target, err)
	}

	c.logger.Debug("backend request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	out := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   raw,
		JSON:   isJSON(resp.Header.Get("Content-Type")),
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return out, nil
	}

	return nil, c.statusError(ctx, req, method, target, out)
}

// DoJSON sends req and decodes a JSON success body into out. out may be nil
// when the body is irrelevant.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return Decode(resp, out)
}

// Decode unmarshals a JSON response. Non-JSON or malformed bodies are server errors.
func Decode(resp *Response, out any) error {
	if !resp.JSON {
		return &common.APIError{
			Kind:    common.ErrServer,
			Status:  resp.Status,
			Message: fmt.Sprintf("expected a JSON response, got %q", resp.Header.Get("Content-Type")),
			Body:    truncate(resp.Text(), 200),
		}
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &common.APIError{
			Kind:    common.ErrServer,
			Status:  resp.Status,
			Message: "malformed response body",
			Err:     err,
		}
	}
	return nil
}

func (c *Client) resolve(req Request) (string, error) {
	target := req.URL
	if target == "" {
		path := req.Path
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = c.baseURL + path
	}

	if len(req.Query) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	for k, vs := range req.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) statusError(ctx context.Context, req Request, method, target string, resp *Response) error {
	body, message := parseErrorBody(resp)

	apiErr := &common.APIError{
		Kind:    common.ErrServer,
		Method:  method,
		URL:     target,
		Status:  resp.Status,
		Body:    body,
		Message: message,
	}

	if resp.Status != http.StatusUnauthorized && resp.Status != http.StatusForbidden {
		return apiErr
	}

	apiErr.Kind = common.ErrUnauthorized
	if req.Anonymous {
		return apiErr
	}

	c.logger.Warn("session rejected by backend, signing out",
		"status", resp.Status,
		"url", target)

	// The clear must finish even if the caller's context is already gone.
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error("failed to clear session", "error", err)
	}
	if c.navigator != nil {
		c.navigator.RedirectToLogin(message)
	}

	return apiErr
}

func (c *Client) transportError(ctx, reqCtx context.Context, method, target string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%s %s: %w", method, target, ctx.Err())
	}

	kind := common.ErrBackendUnavailable
	var netErr net.Error
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		kind = common.ErrTimeout
	}

	c.logger.Debug("backend request failed",
		"method", method,
		"url", target,
		"kind", common.KindOf(&common.APIError{Kind: kind}),
		"error", err)

	return &common.APIError{
		Kind:   kind,
		Method: method,
		URL:    target,
		Err:    err,
	}
}

// parseErrorBody extracts the parsed body and the best human message from a
// failed response: body.message, then body.error, then the status line.
func parseErrorBody(resp *Response) (any, string) {
	fallback := fmt.Sprintf("HTTP Error: %d", resp.Status)

	if resp.JSON {
		var parsed any
		if err := json.Unmarshal(resp.Body, &parsed); err == nil {
			if obj, ok := parsed.(map[string]any); ok {
				for _, key := range []string{"message", "error"} {
					if s, ok := obj[key].(string); ok && s != "" {
						return parsed, s
					}
				}
			}
			return parsed, fallback
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fallback
	}
	return text, fallback
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
