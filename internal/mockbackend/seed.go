package mockbackend

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

// AddCategory stores a category and returns it with its assigned ID.
func (s *Server) AddCategory(name, emoji, description string) Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Category{ID: s.nextCategoryID, Name: name, Emoji: emoji, Description: description}
	s.nextCategoryID++
	s.categories = append(s.categories, c)
	return c
}

// AddMovement stores a movement against an existing category and updates the balance.
func (s *Server) AddMovement(description string, amount decimal.Decimal, movementType, currency, date string, categoryID int64) Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := Movement{
		ID:           s.nextMovementID,
		Description:  description,
		Amount:       json.Number(amount.String()),
		MovementType: movementType,
		Currency:     currency,
		Date:         date,
	}
	for _, c := range s.categories {
		if c.ID == categoryID {
			m.Category = MovementCategory{ID: c.ID, Name: c.Name, Emoji: c.Emoji}
		}
	}
	s.nextMovementID++
	s.movements = append(s.movements, m)
	s.applyToBalance(m, 1)
	return m
}

// SetBalance replaces the balance resource.
func (s *Server) SetBalance(b Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = b
}

// AddUser registers credentials accepted by the login endpoint.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// Seed fills the server with a small demo data set.
func (s *Server) Seed() {
	food := s.AddCategory("Comida", "🍔", "Supermercado y restaurantes")
	work := s.AddCategory("Trabajo", "💼", "Sueldo y honorarios")
	home := s.AddCategory("Hogar", "🏠", "Alquiler y servicios")

	s.AddMovement("Sueldo", decimal.NewFromInt(850000), "INGRESO", "ARS", "2024-10-01", work.ID)
	s.AddMovement("Alquiler", decimal.NewFromInt(320000), "EGRESO", "ARS", "2024-10-02", home.ID)
	s.AddMovement("Supermercado", decimal.RequireFromString("45210.50"), "EGRESO", "ARS", "2024-10-03", food.ID)
	s.AddMovement("Honorarios", decimal.NewFromInt(400), "INGRESO", "USD", "2024-10-05", work.ID)

	s.mu.Lock()
	s.balance.StockList = []Stock{
		{Symbol: "GGAL", Quantity: "10", Value: "52300"},
		{Symbol: "YPF", Quantity: "4", Value: "98000"},
	}
	s.mu.Unlock()
}

// NewTestServer starts s behind an httptest server that is closed when the test ends.
func NewTestServer(tb testing.TB) (*Server, *httptest.Server) {
	tb.Helper()

	s := New()
	ts := httptest.NewServer(s)
	tb.Cleanup(ts.Close)
	return s, ts
}
