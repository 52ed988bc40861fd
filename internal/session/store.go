// Package session holds the persisted client-side state: the authenticated
// user with their bearer token, and the UI theme. Both live as small JSON
// envelopes on disk and are hydrated once at startup. Corrupt or missing
// files degrade to zero values; callers never see a parse error.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

// Tema is the UI color theme persisted alongside the session.
type Tema string

const (
	TemaOscuro Tema = "oscuro"
	TemaClaro  Tema = "claro"
)

// Sesion is the persisted auth envelope.
type Sesion struct {
	Usuario     *domain.Usuario `json:"usuario"`
	Token       string          `json:"token"`
	Autenticado bool            `json:"autenticado"`
}

type temaEnvelope struct {
	Tema Tema `json:"tema"`
}

// Store is the single mutation funnel for persisted client state. Every
// update goes through Set/Clear/SetTema and is written back synchronously.
type Store struct {
	mu     sync.RWMutex
	dir    string
	sesion Sesion
	tema   Tema
}

// NewStore creates a Store rooted at dir and hydrates it from disk.
func NewStore(dir string) *Store {
	s := &Store{dir: dir, tema: TemaOscuro}
	s.hydrate()
	return s
}

func (s *Store) sesionPath() string { return filepath.Join(s.dir, "session.json") }
func (s *Store) temaPath() string   { return filepath.Join(s.dir, "theme.json") }

// hydrate loads both envelopes, tolerating absence and corruption.
func (s *Store) hydrate() {
	if data, err := os.ReadFile(s.sesionPath()); err == nil {
		var ses Sesion
		if json.Unmarshal(data, &ses) == nil {
			s.sesion = ses
		}
	}
	if data, err := os.ReadFile(s.temaPath()); err == nil {
		var env temaEnvelope
		if json.Unmarshal(data, &env) == nil && (env.Tema == TemaClaro || env.Tema == TemaOscuro) {
			s.tema = env.Tema
		}
	}
}

// Token returns the bearer token, or "" when not authenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.sesion.Autenticado {
		return ""
	}
	return s.sesion.Token
}

// Usuario returns the logged-in user, or nil.
func (s *Store) Usuario() *domain.Usuario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.sesion.Autenticado {
		return nil
	}
	return s.sesion.Usuario
}

// Autenticado reports whether a session is active.
func (s *Store) Autenticado() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sesion.Autenticado
}

// Set records a fresh login and persists it.
func (s *Store) Set(u *domain.Usuario, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sesion = Sesion{Usuario: u, Token: token, Autenticado: true}
	return s.writeJSON(s.sesionPath(), s.sesion)
}

// Clear drops the session, both in memory and on disk. Invoked on logout and
// on any 401 from the backend.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sesion = Sesion{}
	return s.writeJSON(s.sesionPath(), s.sesion)
}

// Tema returns the active theme.
func (s *Store) Tema() Tema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tema
}

// SetTema switches and persists the theme.
func (s *Store) SetTema(t Tema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tema = t
	return s.writeJSON(s.temaPath(), temaEnvelope{Tema: t})
}

func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
