package api

import (
	"context"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

const loginPath = "/auth/login"

// Credenciales is the login payload for POST /auth/login.
type Credenciales struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRespuesta is the session the backend issues on a successful login.
type LoginRespuesta struct {
	Usuario *domain.Usuario `json:"usuario"`
	Token   string          `json:"token"`
}

// Login authenticates against /auth/login. Persisting the session is the
// caller's job; the client itself never writes tokens.
func (c *Client) Login(ctx context.Context, creds Credenciales) (*LoginRespuesta, error) {
	var resp LoginRespuesta
	if err := c.post(ctx, loginPath, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
