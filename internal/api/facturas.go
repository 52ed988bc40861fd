package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

// FiltroFacturas narrows GET /facturas to pending or delivered invoices.
type FiltroFacturas struct {
	Pendientes *bool
}

func (f FiltroFacturas) Query() url.Values {
	q := url.Values{}
	if f.Pendientes != nil {
		q.Set("pendientes", fmt.Sprintf("%t", *f.Pendientes))
	}
	return q
}

func (c *Client) ListFacturas(ctx context.Context, filtro FiltroFacturas) ([]domain.Factura, error) {
	var out []domain.Factura
	if err := c.get(ctx, "/facturas", filtro.Query(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFactura emits the billing document for an order in FACTURACION.
func (c *Client) CreateFactura(ctx context.Context, nueva domain.NuevaFactura) (*domain.Factura, error) {
	var f domain.Factura
	if err := c.post(ctx, "/facturas", nueva, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ConfirmarEntregaFactura records delivery confirmation on an invoice.
func (c *Client) ConfirmarEntregaFactura(ctx context.Context, id int) error {
	return c.patch(ctx, fmt.Sprintf("/facturas/%d/entregar", id), nil, nil)
}
