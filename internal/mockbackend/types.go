package mockbackend

import "encoding/json"

// Category is the category resource as the backend serializes it.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	ID          int64  `json:"id"`
}

// MovementCategory is the category summary embedded in a movement.
type MovementCategory struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	ID    int64  `json:"id"`
}

// Movement is the movement resource as the backend serializes it.
type Movement struct {
	Reference    *string          `json:"reference"`
	Amount       json.Number      `json:"amount"`
	Description  string           `json:"description"`
	MovementType string           `json:"movementType"`
	Currency     string           `json:"currency"`
	Date         string           `json:"date"`
	Category     MovementCategory `json:"category"`
	ID           int64            `json:"id"`
}

// Stock is a holding inside the balance resource.
type Stock struct {
	Symbol   string      `json:"symbol"`
	Quantity json.Number `json:"quantity"`
	Value    json.Number `json:"value"`
}

// Balance is the balance resource.
type Balance struct {
	StockList []Stock     `json:"stockList"`
	ARS       json.Number `json:"ars"`
	Dolares   json.Number `json:"dolares"`
	ID        int64       `json:"id"`
}

// Page is the paginated envelope used for movement listings.
type Page struct {
	Content       []Movement `json:"content"`
	Number        int        `json:"number"`
	Size          int        `json:"size"`
	TotalPages    int        `json:"totalPages"`
	TotalElements int        `json:"totalElements"`
}

type movementPayload struct {
	Amount       json.Number `json:"amount"`
	Description  string      `json:"description"`
	MovementType string      `json:"movementType"`
	Currency     string      `json:"currency"`
	Date         string      `json:"date"`
	Reference    string      `json:"reference"`
	CategoryID   int64       `json:"categoryID"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	JWT      string `json:"jwt"`
	Status   bool   `json:"status"`
}
