package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/finanzas/internal/export"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}

	switch m.state {
	case StateLoading:
		sections = append(sections, m.spinner.View()+" "+m.theme.StatusPending.Render("Loading..."))
	case StateReady:
		sections = append(sections, m.table.View(), m.renderStatus())
	case StateUnavailable:
		sections = append(sections,
			m.theme.StatusWarning.Render("Backend unavailable."),
			m.theme.Subtitle.Render(errorText(m.lastErr)),
			m.theme.Normal.Render("Press r to retry."))
	case StateLoggedOut:
		sections = append(sections,
			m.theme.StatusError.Render("You are not logged in or your session expired."),
			m.theme.Normal.Render("Run `finanzas login`, then open the dashboard again."))
	case StateFailed:
		sections = append(sections,
			m.theme.StatusError.Render("Could not load the dashboard."),
			m.theme.Subtitle.Render(errorText(m.lastErr)),
			m.theme.Normal.Render("Press r to retry."))
	}

	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("💰 Finanzas")
	if !m.loaded {
		return m.theme.RoundedBox.Render(title)
	}

	b := m.overview.Balance
	line := strings.Join([]string{
		m.theme.Bold.Render("ARS ") + export.FormatCurrency(b.ARSAmount, model.CurrencyARS),
		m.theme.Bold.Render("USD ") + export.FormatCurrency(b.USDAmount, model.CurrencyUSD),
		m.theme.Bold.Render("Acciones ") + export.FormatCurrency(b.HoldingsValue(), model.CurrencyARS),
	}, "   ")

	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, title, line))
}

func (m Model) renderStatus() string {
	p := m.overview.Page
	filter := "all"
	switch m.typeFilter {
	case model.MovementIncome:
		filter = m.theme.Income.Render("income")
	case model.MovementExpense:
		filter = m.theme.Expense.Render("expenses")
	}

	pages := "no movements"
	if p.TotalPages > 0 {
		pages = fmt.Sprintf("page %d of %d · %d movements", p.Number+1, p.TotalPages, p.TotalElements)
	}

	return m.theme.Subtitle.Render(fmt.Sprintf("%s · %d categories · showing %s", pages, len(m.overview.Categories), filter))
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
