package tui

import (
	"context"

	"github.com/Veraticus/finanzas/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

func loadOverview(ctx context.Context, loader OverviewLoader, filters *model.MovementFilters, seq int) tea.Cmd {
	return func() tea.Msg {
		overview, err := loader.LoadOverview(ctx, filters)
		return overviewLoadedMsg{overview: overview, err: err, seq: seq}
	}
}
