package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the view-model direction of a movement.
type TransactionType string

const (
	// TransactionIncome is money received.
	TransactionIncome TransactionType = "income"
	// TransactionExpense is money spent.
	TransactionExpense TransactionType = "expense"
)

// Transaction is the display form of a Movement.
type Transaction struct {
	Amount      decimal.Decimal
	ID          string
	Description string
	Date        string
	Type        TransactionType
	Category    string
	Currency    Currency
	Reference   string
}

// ToTransaction maps a movement to its display form. INGRESO becomes income
// and every other type becomes expense, so the mapping is total.
func ToTransaction(m Movement) Transaction {
	txType := TransactionExpense
	if m.MovementType == MovementIncome {
		txType = TransactionIncome
	}

	return Transaction{
		ID:          strconv.FormatInt(m.ID, 10),
		Description: m.Description,
		Amount:      m.Amount,
		Date:        m.Date,
		Type:        txType,
		Category:    categoryLabel(m.Category.Emoji, m.Category.Name),
		Currency:    m.Currency,
		Reference:   m.Reference,
	}
}

// ToTransactions maps movements in order.
func ToTransactions(movements []Movement) []Transaction {
	txs := make([]Transaction, 0, len(movements))
	for _, m := range movements {
		txs = append(txs, ToTransaction(m))
	}
	return txs
}

// Summary aggregates a set of transactions.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
	Count    int
}

// Summarize totals income and expenses. Amounts are added as-is regardless
// of currency.
func Summarize(txs []Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expenses: decimal.Zero, Count: len(txs)}
	for _, tx := range txs {
		if tx.Type == TransactionIncome {
			s.Income = s.Income.Add(tx.Amount)
		} else {
			s.Expenses = s.Expenses.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

func categoryLabel(emoji, name string) string {
	if emoji == "" {
		return name
	}
	return strings.TrimSpace(emoji + " " + name)
}
