// Package export renders movement history into files and spreadsheets.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finanzas/internal/model"
	"github.com/shopspring/decimal"
)

// Columns is the table header shared by every export format.
var Columns = []string{"Fecha", "Descripción", "Categoría", "Referencia", "Monto", "Tipo"}

// Report is the format-independent content of an export.
type Report struct {
	GeneratedAt  time.Time
	Transactions []model.Transaction
	Summary      model.Summary
}

// NewReport summarizes txs as of now.
func NewReport(txs []model.Transaction, now time.Time) Report {
	return Report{
		GeneratedAt:  now,
		Transactions: txs,
		Summary:      model.Summarize(txs),
	}
}

// Rows returns one display row per transaction, in input order.
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		rows = append(rows, []string{
			FormatDate(tx.Date),
			tx.Description,
			StripEmoji(tx.Category),
			tx.Reference,
			FormatCurrency(tx.Amount, tx.Currency),
			TypeLabel(tx.Type),
		})
	}
	return rows
}

// FileName is the default PDF name for a report generated at t.
func FileName(t time.Time) string {
	return "transacciones_" + t.Format("2006-01-02") + ".pdf"
}

// TypeLabel is the Spanish label for a transaction direction.
func TypeLabel(t model.TransactionType) string {
	if t == model.TransactionIncome {
		return "Ingreso"
	}
	return "Egreso"
}

// FormatDate renders an ISO date as dd/mm/yyyy. Unparseable input is
// returned unchanged.
func FormatDate(iso string) string {
	if len(iso) < 10 {
		return iso
	}
	d, err := time.Parse("2006-01-02", iso[:10])
	if err != nil {
		return iso
	}
	return d.Format("02/01/2006")
}

// FormatCurrency renders an amount in es-AR style: "$ 1.234,56" for pesos,
// "US$ 1.234,56" for dollars.
func FormatCurrency(amount decimal.Decimal, currency model.Currency) string {
	symbol := "$"
	if currency == model.CurrencyUSD {
		symbol = "US$"
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	return fmt.Sprintf("%s%s %s,%s", sign, symbol, grouped.String(), frac)
}

// StripEmoji removes pictographs and their joiners, then trims the result.
func StripEmoji(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 0x1F000 && r <= 0x1FAFF,
			r >= 0x2600 && r <= 0x27BF,
			r == 0xFE0F, r == 0x200D:
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
