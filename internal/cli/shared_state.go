package cli

import (
	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/config"
	"github.com/stevenbetancur/pipe-app/internal/domain"
	"github.com/stevenbetancur/pipe-app/internal/query"
	"github.com/stevenbetancur/pipe-app/internal/session"
)

// SharedState holds the application context shared across all views via
// pointer: the HTTP client, the query cache, the session store and the
// terminal dimensions.
type SharedState struct {
	API    *api.Client
	Cache  *query.Cache
	Sesion *session.Store
	Cfg    config.Config

	// Terminal dimensions
	Width  int
	Height int
}

// ContentHeight returns the available height for view content, accounting
// for header (2 lines), status bar (2 lines) and the toast area (1 line).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}

// NombreUsuario returns the logged-in user's name for the header, or "".
func (s *SharedState) NombreUsuario() string {
	if u := s.Sesion.Usuario(); u != nil {
		return u.Nombre
	}
	return ""
}

// EsAdmin reports whether the current user can open the admin views
// (users, machines, schedules). The backend enforces this on every
// endpoint; hiding the views is a courtesy, not a control.
func (s *SharedState) EsAdmin() bool {
	u := s.Sesion.Usuario()
	return u != nil && u.Rol == domain.RolAdmin
}
