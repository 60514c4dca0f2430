package main

import (
	"github.com/Veraticus/finanzas/internal/tui"
	"github.com/Veraticus/finanzas/internal/tui/themes"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	var (
		theme    string
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(a *app) error {
				return tui.Run(cmd.Context(), a.svc,
					tui.WithTheme(themes.GetTheme(theme)),
					tui.WithPageSize(pageSize))
			})
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "default", "color theme (default, catppuccin-mocha)")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "movements per page")

	return cmd
}
