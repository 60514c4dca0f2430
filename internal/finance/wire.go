package finance

import (
	"encoding/json"
	"strconv"

	"github.com/Veraticus/finanzas/internal/model"
	"github.com/shopspring/decimal"
)

type categoryRefWire struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	ID    int64  `json:"id"`
}

type movementWire struct {
	Reference *string `json:"reference"`
	// Category is absent from some write responses, which echo categoryID instead.
	Category     *categoryRefWire `json:"category"`
	Amount       decimal.Decimal  `json:"amount"`
	Description  string           `json:"description"`
	MovementType string           `json:"movementType" validate:"oneof=INGRESO EGRESO"`
	Currency     string           `json:"currency" validate:"oneof=ARS USD"`
	Date         string           `json:"date"`
	Fecha        string           `json:"fecha"`
	ID           int64            `json:"id" validate:"gt=0"`
	CategoryID   int64            `json:"categoryID"`
}

func (w movementWire) toModel() model.Movement {
	m := model.Movement{
		ID:           w.ID,
		Description:  w.Description,
		Amount:       w.Amount,
		MovementType: model.MovementType(w.MovementType),
		Currency:     model.Currency(w.Currency),
		Date:         w.Date,
	}
	if m.Date == "" {
		m.Date = w.Fecha
	}
	if w.Reference != nil {
		m.Reference = *w.Reference
	}
	if w.Category != nil {
		m.Category = model.MovementCategory{ID: w.Category.ID, Name: w.Category.Name, Emoji: w.Category.Emoji}
	} else {
		m.Category.ID = w.CategoryID
	}
	return m
}

type movementPageWire struct {
	Content       []movementWire `json:"content" validate:"dive"`
	Number        int            `json:"number"`
	Size          int            `json:"size"`
	TotalPages    int            `json:"totalPages"`
	TotalElements int64          `json:"totalElements"`
}

// movementPayload is both the outgoing create/update body and the
// pre-flight validation target. Only description, amount and category are
// checked here; type, currency and date are the backend's to judge.
type movementPayload struct {
	Amount       json.Number `json:"amount" validate:"positive"`
	Description  string      `json:"description" validate:"notblank"`
	MovementType string      `json:"movementType"`
	Currency     string      `json:"currency"`
	Date         string      `json:"date"`
	Reference    string      `json:"reference,omitempty"`
	CategoryID   int64       `json:"categoryID" validate:"gt=0"`
}

func newMovementPayload(in model.MovementInput) movementPayload {
	return movementPayload{
		Amount:       json.Number(in.Amount.String()),
		Description:  in.Description,
		MovementType: string(in.MovementType),
		Currency:     string(in.Currency),
		Date:         in.Date,
		Reference:    in.Reference,
		CategoryID:   in.CategoryID,
	}
}

type categoryWire struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	ID          int64  `json:"id" validate:"gt=0"`
}

func (w categoryWire) toModel() model.Category {
	return model.Category{ID: w.ID, Name: w.Name, Description: w.Description, Emoji: w.Emoji}
}

type categoryListWire struct {
	Items []categoryWire `validate:"dive"`
}

type categoryPayload struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
}

type stockWire struct {
	Symbol   string          `json:"symbol" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

type balanceWire struct {
	ARS       decimal.Decimal `json:"ars"`
	Dolares   decimal.Decimal `json:"dolares"`
	StockList []stockWire     `json:"stockList" validate:"dive"`
	ID        int64           `json:"id"`
}

func (w balanceWire) toModel() model.UserBalance {
	b := model.UserBalance{
		ID:            w.ID,
		ARSAmount:     w.ARS,
		USDAmount:     w.Dolares,
		StockHoldings: make([]model.Stock, 0, len(w.StockList)),
	}
	for _, s := range w.StockList {
		b.StockHoldings = append(b.StockHoldings, model.Stock{Symbol: s.Symbol, Quantity: s.Quantity, Value: s.Value})
	}
	return b
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}
