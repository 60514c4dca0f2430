// Command mock-backend serves the in-memory finance backend for local
// development against the finanzas CLI and dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/mockbackend"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		listen   string
		seed     bool
		users    []string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:          "mock-backend",
		Short:        "Run an in-memory finance backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := common.SetupLogger(common.LogOptions{Level: logLevel}); err != nil {
				return err
			}

			backend := mockbackend.New()
			if seed {
				backend.Seed()
			}
			for _, u := range users {
				name, password, ok := strings.Cut(u, ":")
				if !ok || name == "" || password == "" {
					return fmt.Errorf("%w: --user must be name:password, got %q", common.ErrInvalidConfig, u)
				}
				backend.AddUser(name, password)
			}

			return serve(cmd.Context(), listen, backend)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	cmd.Flags().BoolVar(&seed, "seed", true, "load demo categories, movements and holdings")
	cmd.Flags().StringSliceVar(&users, "user", nil, "extra login as name:password (repeatable)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Mock backend listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down mock backend")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
