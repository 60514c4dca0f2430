package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/finanzas/internal/common"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard until the user quits or ctx ends. It returns an
// error wrapping common.ErrUnauthorized when the user left from the
// logged-out view.
func Run(ctx context.Context, loader OverviewLoader, opts ...Option) error {
	if loader == nil {
		return fmt.Errorf("overview loader is required")
	}

	p := tea.NewProgram(New(ctx, loader, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard failed: %w", err)
	}

	if m, ok := final.(Model); ok && m.State() == StateLoggedOut {
		return fmt.Errorf("%w: log in again to use the dashboard", common.ErrUnauthorized)
	}
	return nil
}
