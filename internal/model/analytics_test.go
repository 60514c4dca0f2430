package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date string, kind TransactionType, amount string, category string) Transaction {
	return Transaction{Date: date, Type: kind, Amount: decimal.RequireFromString(amount), Category: category}
}

func TestMonthlyTotals(t *testing.T) {
	type month struct {
		month, income, expense string
	}

	tests := []struct {
		name string
		txs  []Transaction
		want []month
	}{
		{name: "empty", txs: nil, want: []month{}},
		{
			name: "groups by month oldest first",
			txs: []Transaction{
				tx("2024-11-02", TransactionExpense, "100", "Hogar"),
				tx("2024-10-01", TransactionIncome, "850000", "Trabajo"),
				tx("2024-10-03", TransactionExpense, "45210.50", "Comida"),
				tx("2024-10-20", TransactionExpense, "10", "Comida"),
			},
			want: []month{
				{month: "2024-10", income: "850000", expense: "45220.5"},
				{month: "2024-11", income: "0", expense: "100"},
			},
		},
		{
			name: "year boundary sorts chronologically",
			txs: []Transaction{
				tx("2025-01-05", TransactionIncome, "1", "Trabajo"),
				tx("2024-12-31", TransactionIncome, "2", "Trabajo"),
			},
			want: []month{
				{month: "2024-12", income: "2", expense: "0"},
				{month: "2025-01", income: "1", expense: "0"},
			},
		},
		{
			name: "timestamps use their date part",
			txs:  []Transaction{tx("2024-10-01T10:15:00Z", TransactionExpense, "5", "Comida")},
			want: []month{{month: "2024-10", income: "0", expense: "5"}},
		},
		{
			name: "undated transactions are left out",
			txs: []Transaction{
				tx("", TransactionExpense, "5", "Comida"),
				tx("01/10/2024", TransactionExpense, "5", "Comida"),
				tx("2024-13-01", TransactionExpense, "5", "Comida"),
				tx("2024-09-30", TransactionIncome, "7", "Trabajo"),
			},
			want: []month{{month: "2024-09", income: "7", expense: "0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyTotals(tt.txs)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w.month, got[i].Month)
				assert.True(t, got[i].Income.Equal(decimal.RequireFromString(w.income)), "income %s", got[i].Income)
				assert.True(t, got[i].Expense.Equal(decimal.RequireFromString(w.expense)), "expense %s", got[i].Expense)
			}
		})
	}
}

func TestMonthTotal_Net(t *testing.T) {
	m := MonthTotal{Income: decimal.NewFromInt(100), Expense: decimal.RequireFromString("120.50")}
	assert.True(t, m.Net().Equal(decimal.RequireFromString("-20.50")))
}

func TestExpensesByCategory(t *testing.T) {
	type total struct {
		category, amount string
		count            int
	}

	tests := []struct {
		name string
		txs  []Transaction
		want []total
	}{
		{name: "empty", want: []total{}},
		{
			name: "income is ignored",
			txs:  []Transaction{tx("2024-10-01", TransactionIncome, "850000", "💼 Trabajo")},
			want: []total{},
		},
		{
			name: "largest first",
			txs: []Transaction{
				tx("2024-10-03", TransactionExpense, "45210.50", "🍔 Comida"),
				tx("2024-10-02", TransactionExpense, "320000", "🏠 Hogar"),
				tx("2024-10-09", TransactionExpense, "1000", "🍔 Comida"),
				tx("2024-10-01", TransactionIncome, "850000", "💼 Trabajo"),
			},
			want: []total{
				{category: "🏠 Hogar", amount: "320000", count: 1},
				{category: "🍔 Comida", amount: "46210.50", count: 2},
			},
		},
		{
			name: "ties ordered by label",
			txs: []Transaction{
				tx("2024-10-03", TransactionExpense, "10", "Salud"),
				tx("2024-10-03", TransactionExpense, "10", "Comida"),
			},
			want: []total{
				{category: "Comida", amount: "10", count: 1},
				{category: "Salud", amount: "10", count: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpensesByCategory(tt.txs)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w.category, got[i].Category)
				assert.Equal(t, w.count, got[i].Count)
				assert.True(t, got[i].Total.Equal(decimal.RequireFromString(w.amount)), "total %s", got[i].Total)
			}
		})
	}
}
