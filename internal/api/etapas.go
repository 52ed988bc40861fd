package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

// FiltroEtapa narrows stage listings to active or historical records.
type FiltroEtapa struct {
	// Activos, when non-nil, filters by presence (true) or absence (false)
	// of the completion date.
	Activos *bool
}

func (f FiltroEtapa) Query() url.Values {
	q := url.Values{}
	if f.Activos != nil {
		q.Set("activos", fmt.Sprintf("%t", *f.Activos))
	}
	return q
}

// ── trillado ─────────────────────────────────────────────────────────────────

func (c *Client) ListTrillado(ctx context.Context, filtro FiltroEtapa) ([]domain.Trillado, error) {
	var out []domain.Trillado
	if err := c.get(ctx, "/trillado", filtro.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IniciarTrillado posts a hulling intake record. The backend moves the order
// out of REGISTRADO as a side effect.
func (c *Client) IniciarTrillado(ctx context.Context, intake domain.IniciarEtapa) (*domain.Trillado, error) {
	var t domain.Trillado
	if err := c.post(ctx, "/trillado", intake, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FinalizarTrillado posts the measured output; the backend assigns the
// completion date and the order's next estado.
func (c *Client) FinalizarTrillado(ctx context.Context, id int, fin domain.FinalizarEtapa) error {
	return c.put(ctx, fmt.Sprintf("/trillado/%d/finalizar", id), fin, nil)
}

// ── tostión ──────────────────────────────────────────────────────────────────

func (c *Client) ListTostion(ctx context.Context, filtro FiltroEtapa) ([]domain.Tostion, error) {
	var out []domain.Tostion
	if err := c.get(ctx, "/tostion", filtro.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) IniciarTostion(ctx context.Context, intake domain.IniciarEtapa) (*domain.Tostion, error) {
	var t domain.Tostion
	if err := c.post(ctx, "/tostion", intake, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) FinalizarTostion(ctx context.Context, id int, fin domain.FinalizarEtapa) error {
	return c.put(ctx, fmt.Sprintf("/tostion/%d/finalizar", id), fin, nil)
}

// ── producción ───────────────────────────────────────────────────────────────

func (c *Client) ListProduccion(ctx context.Context, filtro FiltroEtapa) ([]domain.Produccion, error) {
	var out []domain.Produccion
	if err := c.get(ctx, "/produccion", filtro.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) IniciarProduccion(ctx context.Context, intake domain.IniciarEtapa) (*domain.Produccion, error) {
	var p domain.Produccion
	if err := c.post(ctx, "/produccion", intake, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) FinalizarProduccion(ctx context.Context, id int, fin domain.FinalizarEtapa) error {
	return c.put(ctx, fmt.Sprintf("/produccion/%d/finalizar", id), fin, nil)
}
