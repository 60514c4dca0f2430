package mockbackend

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "JSON inválido"})
		return
	}

	s.mu.Lock()
	password, ok := s.users[creds.Username]
	s.mu.Unlock()

	if !ok || password != creds.Password {
		WriteJSON(w, http.StatusUnauthorized, loginResponse{
			Username: creds.Username,
			Message:  "Credenciales inválidas",
		})
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		Username: creds.Username,
		Message:  "Login exitoso",
		JWT:      s.IssueToken(creds.Username),
		Status:   true,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logout exitoso"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" || creds.Password == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "usuario y contraseña son obligatorios"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[creds.Username]; exists {
		WriteJSON(w, http.StatusConflict, map[string]string{"message": "El usuario ya existe"})
		return
	}
	s.users[creds.Username] = creds.Password

	WriteJSON(w, http.StatusCreated, map[string]any{
		"id":       len(s.users),
		"username": creds.Username,
		"message":  "Usuario creado",
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	balance := s.balance
	s.mu.Unlock()

	WriteJSON(w, http.StatusOK, balance)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cats := append([]Category{}, s.categories...)
	s.mu.Unlock()

	WriteJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in Category
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "El nombre es obligatorio"})
		return
	}

	WriteJSON(w, http.StatusCreated, s.AddCategory(in.Name, in.Emoji, in.Description))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var in Category
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "JSON inválido"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].ID != id {
			continue
		}
		if in.Name != "" {
			s.categories[i].Name = in.Name
		}
		s.categories[i].Description = in.Description
		s.categories[i].Emoji = in.Emoji
		WriteJSON(w, http.StatusOK, s.categories[i])
		return
	}
	WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Categoría no encontrada"})
}

// handleDeleteCategory refuses to delete a category that still has
// movements. The real backend's behaviour here is unknown; the fake picks
// the conservative option.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.movements {
		if m.Category.ID == id {
			WriteJSON(w, http.StatusConflict, map[string]string{"message": "La categoría tiene movimientos asociados"})
			return
		}
	}

	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Categoría no encontrada"})
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 0)
	size := atoiDefault(q.Get("size"), 20)
	if size <= 0 {
		size = 20
	}

	s.mu.Lock()
	var matched []Movement
	for _, m := range s.movements {
		if matchesFilters(m, q) {
			matched = append(matched, m)
		}
	}
	s.mu.Unlock()

	total := len(matched)
	start := min(page*size, total)
	end := min(start+size, total)

	content := matched[start:end]
	if content == nil {
		content = []Movement{}
	}

	WriteJSON(w, http.StatusOK, Page{
		Content:       content,
		Number:        page,
		Size:          size,
		TotalPages:    (total + size - 1) / size,
		TotalElements: total,
	})
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeMovementPayload(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.buildMovement(w, s.nextMovementID, payload)
	if !ok {
		return
	}
	s.nextMovementID++
	s.movements = append(s.movements, m)
	s.applyToBalance(m, 1)

	WriteJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMovement(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	payload, ok := decodeMovementPayload(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.movements {
		if s.movements[i].ID != id {
			continue
		}
		m, ok := s.buildMovement(w, id, payload)
		if !ok {
			return
		}
		s.applyToBalance(s.movements[i], -1)
		s.movements[i] = m
		s.applyToBalance(m, 1)
		WriteJSON(w, http.StatusOK, m)
		return
	}
	WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Movimiento no encontrado"})
}

func decodeMovementPayload(w http.ResponseWriter, r *http.Request) (movementPayload, bool) {
	var p movementPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "JSON inválido"})
		return p, false
	}
	if p.MovementType != "INGRESO" && p.MovementType != "EGRESO" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "movementType inválido"})
		return p, false
	}
	if p.Currency != "ARS" && p.Currency != "USD" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "currency inválida"})
		return p, false
	}
	return p, true
}

// buildMovement must be called with s.mu held.
func (s *Server) buildMovement(w http.ResponseWriter, id int64, p movementPayload) (Movement, bool) {
	var cat *Category
	for i := range s.categories {
		if s.categories[i].ID == p.CategoryID {
			cat = &s.categories[i]
			break
		}
	}
	if cat == nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"message": "Categoría no encontrada"})
		return Movement{}, false
	}

	var ref *string
	if p.Reference != "" {
		r := p.Reference
		ref = &r
	}

	return Movement{
		ID:           id,
		Description:  p.Description,
		Amount:       p.Amount,
		MovementType: p.MovementType,
		Currency:     p.Currency,
		Reference:    ref,
		Date:         p.Date,
		Category:     MovementCategory{ID: cat.ID, Name: cat.Name, Emoji: cat.Emoji},
	}, true
}

// applyToBalance must be called with s.mu held. sign is 1 to apply, -1 to revert.
func (s *Server) applyToBalance(m Movement, sign int64) {
	amount, err := decimal.NewFromString(m.Amount.String())
	if err != nil {
		return
	}
	if m.MovementType == "EGRESO" {
		amount = amount.Neg()
	}
	amount = amount.Mul(decimal.NewFromInt(sign))

	switch m.Currency {
	case "USD":
		s.balance.Dolares = addNumber(s.balance.Dolares, amount)
	default:
		s.balance.ARS = addNumber(s.balance.ARS, amount)
	}
}

func matchesFilters(m Movement, q map[string][]string) bool {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	date := m.Date
	if len(date) > 10 {
		date = date[:10]
	}
	if from := get("startDate"); from != "" && date < from {
		return false
	}
	if to := get("endDate"); to != "" && date > to {
		return false
	}
	if cat := get("categoryId"); cat != "" && strconv.FormatInt(m.Category.ID, 10) != cat {
		return false
	}
	if t := get("type"); t != "" && m.MovementType != t {
		return false
	}
	return true
}

func addNumber(n json.Number, delta decimal.Decimal) json.Number {
	current, err := decimal.NewFromString(n.String())
	if err != nil {
		current = decimal.Zero
	}
	return json.Number(current.Add(delta).String())
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
