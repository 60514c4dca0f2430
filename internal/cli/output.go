package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/Veraticus/finanzas/internal/export"
	"github.com/Veraticus/finanzas/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/schollz/progressbar/v3"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return BoldStyle.Foreground(PrimaryColor).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// RenderMovements renders movements as a table in listing order.
func RenderMovements(movements []model.Movement) string {
	t := newTable("ID", "Fecha", "Descripción", "Categoría", "Referencia", "Monto", "Tipo")
	for _, m := range movements {
		tx := model.ToTransaction(m)
		t.Row(
			tx.ID,
			export.FormatDate(tx.Date),
			tx.Description,
			tx.Category,
			tx.Reference,
			FormatAmount(export.FormatCurrency(tx.Amount, tx.Currency), tx.Type == model.TransactionIncome),
			export.TypeLabel(tx.Type),
		)
	}
	return t.String()
}

// RenderPageFooter describes where a page sits in the listing.
func RenderPageFooter(p model.MovementPage) string {
	if p.TotalPages == 0 {
		return SubtleStyle.Render("No movements.")
	}
	return SubtleStyle.Render(fmt.Sprintf("Page %d of %d · %d movements", p.Number+1, p.TotalPages, p.TotalElements))
}

// RenderCategories renders categories as a table.
func RenderCategories(categories []model.Category) string {
	t := newTable("ID", "Emoji", "Nombre", "Descripción")
	for _, c := range categories {
		t.Row(strconv.FormatInt(c.ID, 10), c.Emoji, c.Name, c.Description)
	}
	return t.String()
}

// RenderBalance renders the balance snapshot as a box.
func RenderBalance(b model.UserBalance) string {
	lines := []string{
		fmt.Sprintf("%-10s %s", "ARS", export.FormatCurrency(b.ARSAmount, model.CurrencyARS)),
		fmt.Sprintf("%-10s %s", "USD", export.FormatCurrency(b.USDAmount, model.CurrencyUSD)),
	}
	if len(b.StockHoldings) > 0 {
		t := newTable("Símbolo", "Cantidad", "Valor")
		for _, s := range b.StockHoldings {
			t.Row(s.Symbol, s.Quantity.String(), export.FormatCurrency(s.Value, model.CurrencyARS))
		}
		lines = append(lines,
			fmt.Sprintf("%-10s %s", "Acciones", export.FormatCurrency(b.HoldingsValue(), model.CurrencyARS)),
			"",
			t.String())
	}
	return RenderBox(ChartIcon+" Balance", lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderMonthlyTotals renders per-month income, expense and net, oldest first.
// Totals mix currencies and are shown in pesos.
func RenderMonthlyTotals(months []model.MonthTotal) string {
	t := newTable("Mes", "Ingresos", "Egresos", "Neto")
	for _, m := range months {
		net := m.Net()
		t.Row(
			m.Month,
			export.FormatCurrency(m.Income, model.CurrencyARS),
			export.FormatCurrency(m.Expense, model.CurrencyARS),
			FormatAmount(export.FormatCurrency(net.Abs(), model.CurrencyARS), !net.IsNegative()),
		)
	}
	return t.String()
}

// RenderCategoryTotals renders expense totals per category, largest first.
func RenderCategoryTotals(totals []model.CategoryTotal) string {
	t := newTable("Categoría", "Movimientos", "Egresos")
	for _, c := range totals {
		t.Row(c.Category, strconv.Itoa(c.Count), export.FormatCurrency(c.Total, model.CurrencyARS))
	}
	return t.String()
}

// NewProgressBar returns a progress bar for total steps written to w.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
