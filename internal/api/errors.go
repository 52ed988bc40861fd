package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions the UI reacts to.
var (
	// ErrTimeout indicates the fixed request timeout elapsed.
	ErrTimeout = errors.New("la solicitud excedió el tiempo de espera")

	// ErrNoDisponible indicates the backend could not be reached at all.
	ErrNoDisponible = errors.New("el servidor no está disponible")

	// ErrSesionExpirada is returned after any 401; the session has already
	// been cleared by the time callers see it.
	ErrSesionExpirada = errors.New("la sesión expiró, inicia sesión de nuevo")
)

// APIError carries a backend rejection: a business-rule message with the
// status code and endpoint that produced it. The message is shown to the
// user verbatim; there is no local recovery.
type APIError struct {
	StatusCode int
	Mensaje    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Mensaje != "" {
		return e.Mensaje
	}
	return fmt.Sprintf("el servidor respondió %d en %s", e.StatusCode, e.Endpoint)
}

// MensajeUsuario maps any client error to the text shown in a toast.
func MensajeUsuario(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return ErrTimeout.Error()
	case errors.Is(err, ErrNoDisponible):
		return ErrNoDisponible.Error()
	case errors.Is(err, ErrSesionExpirada):
		return ErrSesionExpirada.Error()
	case err == nil:
		return ""
	default:
		return "error de red, intenta de nuevo"
	}
}
