package export

import (
	"testing"
	"time"

	"github.com/Veraticus/finanzas/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions(n int) []model.Transaction {
	txs := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		tx := model.Transaction{
			ID:          "1",
			Description: "Supermercado",
			Amount:      decimal.RequireFromString("1234.5"),
			Date:        "2024-10-03",
			Type:        model.TransactionExpense,
			Category:    "🍔 Comida",
			Currency:    model.CurrencyARS,
			Reference:   "T-1",
		}
		if i%2 == 0 {
			tx.Type = model.TransactionIncome
			tx.Description = "Sueldo"
			tx.Category = "💼 Trabajo"
		}
		txs = append(txs, tx)
	}
	return txs
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency model.Currency
		want     string
	}{
		{name: "zero", amount: "0", currency: model.CurrencyARS, want: "$ 0,00"},
		{name: "small", amount: "5.5", currency: model.CurrencyARS, want: "$ 5,50"},
		{name: "thousands", amount: "1234.56", currency: model.CurrencyARS, want: "$ 1.234,56"},
		{name: "millions", amount: "1234567.891", currency: model.CurrencyARS, want: "$ 1.234.567,89"},
		{name: "exact hundreds", amount: "100", currency: model.CurrencyARS, want: "$ 100,00"},
		{name: "dollars", amount: "320", currency: model.CurrencyUSD, want: "US$ 320,00"},
		{name: "negative", amount: "-1500", currency: model.CurrencyARS, want: "-$ 1.500,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "03/10/2024", FormatDate("2024-10-03"))
	assert.Equal(t, "03/10/2024", FormatDate("2024-10-03T15:04:05"))
	assert.Equal(t, "ayer", FormatDate("ayer"))
	assert.Equal(t, "not-a-date", FormatDate("not-a-date"))
}

func TestStripEmoji(t *testing.T) {
	tests := map[string]string{
		"🍔 Comida":    "Comida",
		"💼 Trabajo":   "Trabajo",
		"☀️ Vacaciones": "Vacaciones",
		"✈ Viajes":    "Viajes",
		"Hogar":       "Hogar",
		"Categoría":   "Categoría",
		"👨‍👩‍👧 Familia": "Familia",
		"":            "",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, StripEmoji(in))
		})
	}
}

func TestReport_Rows(t *testing.T) {
	report := NewReport(sampleTransactions(2), time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC))

	rows := report.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"03/10/2024", "Sueldo", "Trabajo", "T-1", "$ 1.234,50", "Ingreso"}, rows[0])
	assert.Equal(t, []string{"03/10/2024", "Supermercado", "Comida", "T-1", "$ 1.234,50", "Egreso"}, rows[1])

	assert.Equal(t, 2, report.Summary.Count)
	assert.True(t, report.Summary.Balance.IsZero())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "transacciones_2024-10-05.pdf", FileName(time.Date(2024, 10, 5, 23, 0, 0, 0, time.UTC)))
}
