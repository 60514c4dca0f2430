package model

import "github.com/shopspring/decimal"

// Stock is a single holding reported with the user's balance.
type Stock struct {
	Symbol   string
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// UserBalance is the server-side aggregate of the user's funds.
type UserBalance struct {
	ARSAmount     decimal.Decimal
	USDAmount     decimal.Decimal
	StockHoldings []Stock
	ID            int64
}

// HoldingsValue sums the value of all stock holdings.
func (b UserBalance) HoldingsValue() decimal.Decimal {
	total := decimal.Zero
	for _, s := range b.StockHoldings {
		total = total.Add(s.Value)
	}
	return total
}
