// Package mockbackend is an in-memory stand-in for the finance REST backend.
// It serves the documented contract for tests and local development and has
// no persistence.
package mockbackend

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Call records one request that reached a route.
type Call struct {
	Query         url.Values
	Method        string
	Path          string
	Template      string
	Authorization string
	Body          []byte
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	router         *mux.Router
	logger         *slog.Logger
	users          map[string]string
	tokens         map[string]string
	overrides      map[string]http.HandlerFunc
	balance        Balance
	categories     []Category
	movements      []Movement
	calls          []Call
	nextCategoryID int64
	nextMovementID int64
	mu             sync.Mutex
}

// New returns a server with a single user admin/password and no data.
func New() *Server {
	s := &Server{
		router:         mux.NewRouter(),
		logger:         slog.Default().With("component", "mockbackend"),
		users:          map[string]string{"admin": "password"},
		tokens:         make(map[string]string),
		overrides:      make(map[string]http.HandlerFunc),
		balance:        Balance{ID: 1, ARS: "0", Dolares: "0", StockList: []Stock{}},
		nextCategoryID: 1,
		nextMovementID: 1,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.record)

	r.HandleFunc("/actuator/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/users", s.handleRegister).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()
	protected.Use(s.requireToken)
	protected.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	protected.HandleFunc("/api/balance/me", s.handleBalance).Methods(http.MethodGet)
	protected.HandleFunc("/api/v1/finanzas/categorias", s.handleListCategories).Methods(http.MethodGet)
	protected.HandleFunc("/api/v1/finanzas/categorias", s.handleCreateCategory).Methods(http.MethodPost)
	protected.HandleFunc("/api/v1/finanzas/categorias/{id:[0-9]+}", s.handleUpdateCategory).Methods(http.MethodPut)
	protected.HandleFunc("/api/v1/finanzas/categorias/{id:[0-9]+}", s.handleDeleteCategory).Methods(http.MethodDelete)
	protected.HandleFunc("/api/movement", s.handleListMovements).Methods(http.MethodGet)
	protected.HandleFunc("/api/movement", s.handleCreateMovement).Methods(http.MethodPost)
	protected.HandleFunc("/api/movement/{id:[0-9]+}", s.handleUpdateMovement).Methods(http.MethodPut)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Override replaces the handler for a route. template is the route's path
// template as registered, e.g. "/api/movement/{id:[0-9]+}". Overrides run
// before authentication.
func (s *Server) Override(method, template string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+template] = h
}

// Calls returns the recorded requests for a route.
func (s *Server) Calls(method, template string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if c.Method == method && c.Template == template {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many requests reached a route.
func (s *Server) CallCount(method, template string) int {
	return len(s.Calls(method, template))
}

// AllCalls returns every recorded request in arrival order.
func (s *Server) AllCalls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// IssueToken creates a valid bearer token for username without a login call.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "tok-" + uuid.NewString()
	s.tokens[token] = username
	return token
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		template := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if t, err := route.GetPathTemplate(); err == nil {
				template = t
			}
		}

		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Template:      template,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		override := s.overrides[r.Method+" "+template]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token requerido"})
			return
		}

		s.mu.Lock()
		_, ok := s.tokens[header[len(prefix):]]
		s.mu.Unlock()

		if !ok {
			WriteJSON(w, http.StatusForbidden, map[string]string{"message": "Token inválido o expirado"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
