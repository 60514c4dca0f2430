package main

import (
	"fmt"

	"github.com/Veraticus/finanzas/internal/cli"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	var retries int

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				err := common.WithRetry(ctx, func() error {
					return a.client.CheckHealth(ctx)
				}, common.RetryOptions{MaxAttempts: retries})
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, cli.FormatSuccess(fmt.Sprintf("Backend at %s is up", a.client.BaseURL())))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&retries, "retries", 1, "attempts before giving up")

	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show your balance and holdings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(a *app) error {
				balance, err := a.auth.RefreshBalance(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, cli.RenderBalance(balance))
				return nil
			})
		},
	}
}
