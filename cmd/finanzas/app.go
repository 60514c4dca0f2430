package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/auth"
	"github.com/Veraticus/finanzas/internal/cli"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/config"
	"github.com/Veraticus/finanzas/internal/finance"
	"github.com/Veraticus/finanzas/internal/session"
	"github.com/spf13/cobra"
)

// app is everything a command needs to talk to the backend.
type app struct {
	cfg    *config.Config
	store  *session.Store
	client *api.Client
	svc    *finance.Service
	auth   *auth.Controller
	out    io.Writer
	errOut io.Writer
}

// newApp opens the session store, restores any saved session and builds the
// request pipeline on top of it.
func newApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	if appConfig == nil {
		return nil, fmt.Errorf("%w: configuration not loaded", common.ErrMissingConfig)
	}

	backend, err := openSessionBackend(ctx, appConfig.Session)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(backend)

	errOut := cmd.ErrOrStderr()
	navigator := api.NavigatorFunc(func(reason string) {
		fmt.Fprintln(errOut, cli.FormatWarning("Session ended: "+reason))
		fmt.Fprintln(errOut, cli.FormatInfo("Run `finanzas login` to sign in again."))
	})

	client, err := api.NewClient(appConfig.Backend, store, navigator)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	svc := finance.NewService(client)
	ctrl := auth.NewController(client, store, svc.Balance)
	if _, err := ctrl.Restore(ctx); err != nil {
		slog.Warn("Could not restore saved session", "error", err)
	}

	return &app{
		cfg:    appConfig,
		store:  store,
		client: client,
		svc:    svc,
		auth:   ctrl,
		out:    cmd.OutOrStdout(),
		errOut: errOut,
	}, nil
}

func openSessionBackend(ctx context.Context, cfg config.SessionConfig) (session.Backend, error) {
	switch cfg.Backend {
	case config.SessionSQLite:
		return session.NewSQLiteBackend(ctx, cfg.Path)
	default:
		return session.NewFileBackend(cfg.Path)
	}
}

// Close waits for background work and releases the session store.
func (a *app) Close() {
	a.auth.Wait()
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close session store", "error", err)
	}
}

// requireSession fails fast when nobody is logged in, instead of letting the
// backend answer 401.
func (a *app) requireSession() error {
	if a.auth.State() != auth.Authenticated {
		return common.NewUserError("You are not logged in. Run `finanzas login` first.", common.ErrNotAuthenticated)
	}
	return nil
}

// withApp runs fn with a ready app and always closes it.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// withSession is withApp for commands that need a logged-in user.
func withSession(cmd *cobra.Command, fn func(a *app) error) error {
	return withApp(cmd, func(a *app) error {
		if err := a.requireSession(); err != nil {
			return err
		}
		return fn(a)
	})
}

// describeError turns a command failure into one line for the terminal.
func describeError(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return cli.FormatError(userErr.UserMessage)
	}

	var validationErr *common.ValidationError
	if errors.As(err, &validationErr) {
		return cli.FormatError("Invalid input: " + validationErr.Error())
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			return cli.FormatError("The backend rejected your session. Run `finanzas login` again.")
		case errors.Is(err, common.ErrBackendUnavailable):
			return cli.FormatError("Backend unavailable at " + appBaseURL() + ". Is it running?")
		case errors.Is(err, common.ErrTimeout):
			return cli.FormatError("The backend did not answer in time.")
		case apiErr.Message != "":
			return cli.FormatError(apiErr.Message)
		}
	}

	if errors.Is(err, common.ErrInvalidCredentials) {
		return cli.FormatError("Invalid username or password.")
	}

	return cli.FormatError(err.Error())
}

func appBaseURL() string {
	if appConfig == nil {
		return "the configured URL"
	}
	return appConfig.Backend.BaseURL
}
