// Package auth drives the session lifecycle: login, logout, registration and
// restoring a persisted session at startup.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/Veraticus/finanzas/internal/session"
)

const (
	loginPath    = "/auth/login"
	logoutPath   = "/auth/logout"
	registerPath = "/api/users"

	// DefaultRoleID is the role assigned to self-registered accounts.
	DefaultRoleID int64 = 1
)

// State is the controller's view of the session.
type State int

const (
	// Anonymous means no session is held.
	Anonymous State = iota
	// Authenticating means a login request is in flight.
	Authenticating
	// Authenticated means a token and profile are held.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// BalanceFetcher loads the signed-in user's balance.
type BalanceFetcher interface {
	GetMine(ctx context.Context) (model.UserBalance, error)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	JWT      string `json:"jwt"`
	Status   bool   `json:"status"`
}

// Controller owns session transitions. Together with the pipeline's
// 401/403 handler it is the only writer of the session store.
type Controller struct {
	client  *api.Client
	store   *session.Store
	balance BalanceFetcher
	logger  *slog.Logger
	wg      sync.WaitGroup
	state   State
	mu      sync.Mutex
	// refreshTimeout bounds the background balance refresh after login.
	refreshTimeout time.Duration
}

// NewController wires the controller to the pipeline and the store it shares with it.
func NewController(client *api.Client, store *session.Store, balance BalanceFetcher) *Controller {
	return &Controller{
		client:         client,
		store:          store,
		balance:        balance,
		logger:         slog.Default().With("component", "auth"),
		refreshTimeout: client.HealthTimeout(),
	}
}

// State reports the current state. A session the pipeline has cleared after
// a 401/403 is reported as Anonymous.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Authenticated && c.store.Token() == "" {
		c.logger.Debug("session cleared by backend rejection")
		c.state = Anonymous
	}
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Restore loads a persisted session. It makes no network call: a stale token
// is discovered by the first request that the backend rejects.
func (c *Controller) Restore(ctx context.Context) (model.Session, error) {
	sess, err := c.store.Load(ctx)
	if err != nil {
		c.setState(Anonymous)
		return model.Session{}, fmt.Errorf("failed to restore session: %w", err)
	}

	if sess.Active() {
		c.setState(Authenticated)
		c.logger.Info("restored session", "username", sess.User.Username)
	} else {
		c.setState(Anonymous)
	}
	return sess, nil
}

// Login exchanges credentials for a token. On success the session is
// persisted and a balance refresh starts in the background; its failure is
// only logged. On any failure the controller ends up Anonymous with no
// session stored.
func (c *Controller) Login(ctx context.Context, username, password string) (model.Session, error) {
	fields := map[string]string{}
	if strings.TrimSpace(username) == "" {
		fields["username"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return model.Session{}, &common.ValidationError{Fields: fields}
	}

	c.setState(Authenticating)

	sess, err := c.login(ctx, username, password)
	if err != nil {
		if clearErr := c.store.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			c.logger.Error("failed to clear session after failed login", "error", clearErr)
		}
		c.setState(Anonymous)
		return model.Session{}, err
	}

	c.setState(Authenticated)
	c.logger.Info("logged in",
		"username", sess.User.Username,
		"token", common.MaskToken(sess.Token))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()

		if _, err := c.RefreshBalance(refreshCtx); err != nil {
			c.logger.Warn("balance refresh after login failed", "error", err)
		}
	}()

	return sess, nil
}

func (c *Controller) login(ctx context.Context, username, password string) (model.Session, error) {
	var resp loginResponse
	err := c.client.DoJSON(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      loginPath,
		Body:      loginRequest{Username: username, Password: password},
		Anonymous: true,
	}, &resp)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			var apiErr *common.APIError
			if errors.As(err, &apiErr) && apiErr.Message != "" {
				return model.Session{}, fmt.Errorf("%w: %s", common.ErrInvalidCredentials, apiErr.Message)
			}
			return model.Session{}, common.ErrInvalidCredentials
		}
		return model.Session{}, fmt.Errorf("login request failed: %w", err)
	}

	if !resp.Status || resp.JWT == "" {
		if resp.Message != "" {
			return model.Session{}, fmt.Errorf("%w: %s", common.ErrInvalidCredentials, resp.Message)
		}
		return model.Session{}, common.ErrInvalidCredentials
	}

	user := model.User{Username: resp.Username}
	if user.Username == "" {
		user.Username = username
	}
	if info, err := ParseTokenInfo(resp.JWT); err == nil {
		user.ID = info.UserID
		user.Email = info.Email
	}

	if err := c.store.Save(ctx, resp.JWT, user); err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: resp.JWT, User: user}, nil
}

// Logout tells the backend (best effort) and then always clears the local
// session.
func (c *Controller) Logout(ctx context.Context) error {
	if c.store.Token() != "" {
		if _, err := c.client.Do(ctx, api.Request{Method: http.MethodPost, Path: logoutPath}); err != nil {
			c.logger.Warn("backend logout failed, clearing local session anyway",
				"kind", common.KindOf(err),
				"error", err)
		}
	}

	err := c.store.Clear(context.WithoutCancel(ctx))
	c.setState(Anonymous)
	if err != nil {
		return err
	}
	c.logger.Info("logged out")
	return nil
}

// Register creates a backend account. It does not sign in.
func (c *Controller) Register(ctx context.Context, reg model.Registration) error {
	fields := map[string]string{}
	if strings.TrimSpace(reg.Username) == "" {
		fields["username"] = "is required"
	}
	if reg.Password == "" {
		fields["password"] = "is required"
	}
	if len(reg.RolesList) == 0 {
		fields["rolesList"] = "must not be empty"
	}
	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}

	if _, err := c.client.Do(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      registerPath,
		Body:      reg,
		Anonymous: true,
	}); err != nil {
		return fmt.Errorf("failed to register %q: %w", reg.Username, err)
	}

	c.logger.Info("registered user", "username", reg.Username)
	return nil
}

// RefreshBalance fetches the balance and caches it in the session store.
func (c *Controller) RefreshBalance(ctx context.Context) (model.UserBalance, error) {
	if c.store.Token() == "" {
		return model.UserBalance{}, common.ErrNotAuthenticated
	}

	bal, err := c.balance.GetMine(ctx)
	if err != nil {
		return model.UserBalance{}, err
	}
	c.store.SetBalance(bal)
	return bal, nil
}

// Wait blocks until background work started by Login has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}
