package model

import "github.com/shopspring/decimal"

// MovementType is the backend's income/expense enumeration.
type MovementType string

const (
	// MovementIncome marks money coming in.
	MovementIncome MovementType = "INGRESO"
	// MovementExpense marks money going out.
	MovementExpense MovementType = "EGRESO"
)

// Valid reports whether t is one of the known movement types.
func (t MovementType) Valid() bool {
	return t == MovementIncome || t == MovementExpense
}

// Currency is the currency a movement is recorded in.
type Currency string

const (
	// CurrencyARS is the Argentine peso.
	CurrencyARS Currency = "ARS"
	// CurrencyUSD is the US dollar.
	CurrencyUSD Currency = "USD"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyARS || c == CurrencyUSD
}

// MovementCategory is the category summary embedded in every movement.
type MovementCategory struct {
	Name  string
	Emoji string
	ID    int64
}

// Movement is a single recorded income or expense event as stored by the backend.
type Movement struct {
	Amount       decimal.Decimal
	Description  string
	MovementType MovementType
	Currency     Currency
	Reference    string
	Date         string // ISO-8601, passed through as sent by the server
	Category     MovementCategory
	ID           int64
}

// MovementInput is the full payload accepted by create and update.
type MovementInput struct {
	Amount       decimal.Decimal
	Description  string
	MovementType MovementType
	Currency     Currency
	Date         string
	Reference    string
	CategoryID   int64
}

// MovementFilters narrows a movement listing. Every field is optional and
// independent of the others; zero values are not sent.
type MovementFilters struct {
	Page      *int
	Size      *int
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Type      MovementType
	// CategoryID of 0 means no category filter.
	CategoryID int64
}

// MovementPage is one page of a movement listing together with its paging metadata.
type MovementPage struct {
	Movements     []Movement
	Number        int
	Size          int
	TotalPages    int
	TotalElements int64
}

// HasNext reports whether another page follows this one.
func (p MovementPage) HasNext() bool {
	return p.Number+1 < p.TotalPages
}
