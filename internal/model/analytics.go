package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthTotal is the income and expense total of one calendar month.
type MonthTotal struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Month   string // YYYY-MM
}

// Net is income minus expense.
func (m MonthTotal) Net() decimal.Decimal {
	return m.Income.Sub(m.Expense)
}

// CategoryTotal is the amount spent under one category.
type CategoryTotal struct {
	Total    decimal.Decimal
	Category string
	Count    int
}

// MonthlyTotals groups transactions by the year and month of their date,
// oldest month first. Transactions whose date does not start with YYYY-MM
// are left out. Amounts are added as-is regardless of currency, like
// Summarize.
func MonthlyTotals(txs []Transaction) []MonthTotal {
	byMonth := make(map[string]*MonthTotal)
	for _, tx := range txs {
		month, ok := yearMonth(tx.Date)
		if !ok {
			continue
		}
		mt, found := byMonth[month]
		if !found {
			mt = &MonthTotal{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[month] = mt
		}
		if tx.Type == TransactionIncome {
			mt.Income = mt.Income.Add(tx.Amount)
		} else {
			mt.Expense = mt.Expense.Add(tx.Amount)
		}
	}

	out := make([]MonthTotal, 0, len(byMonth))
	for _, mt := range byMonth {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ExpensesByCategory totals expenses per category label, largest first.
// Ties are ordered by label. Income is ignored.
func ExpensesByCategory(txs []Transaction) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)
	for _, tx := range txs {
		if tx.Type != TransactionExpense {
			continue
		}
		ct, found := byCategory[tx.Category]
		if !found {
			ct = &CategoryTotal{Category: tx.Category, Total: decimal.Zero}
			byCategory[tx.Category] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func yearMonth(date string) (string, bool) {
	if len(date) < 7 || date[4] != '-' {
		return "", false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6} {
		if date[i] < '0' || date[i] > '9' {
			return "", false
		}
	}
	if date[5:7] < "01" || date[5:7] > "12" {
		return "", false
	}
	return date[:7], true
}
