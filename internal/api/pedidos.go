package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

// FiltroPedidos narrows GET /pedidos. Zero value lists everything.
type FiltroPedidos struct {
	Estado domain.EstadoPedido
	Buscar string
}

// Query canonicalises the filter for both the request and the cache key.
func (f FiltroPedidos) Query() url.Values {
	q := url.Values{}
	if f.Estado != "" {
		q.Set("estado", string(f.Estado))
	}
	if f.Buscar != "" {
		q.Set("buscar", f.Buscar)
	}
	return q
}

// ListPedidos fetches orders, optionally filtered by estado or search term.
func (c *Client) ListPedidos(ctx context.Context, filtro FiltroPedidos) ([]domain.Pedido, error) {
	var pedidos []domain.Pedido
	if err := c.get(ctx, "/pedidos", filtro.Query(), &pedidos); err != nil {
		return nil, err
	}
	return pedidos, nil
}

// GetPedido fetches a single order with its detalles.
func (c *Client) GetPedido(ctx context.Context, id int) (*domain.Pedido, error) {
	var p domain.Pedido
	if err := c.get(ctx, fmt.Sprintf("/pedidos/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePedido registers a new order with its line items nested under
// detalles, in a single POST.
func (c *Client) CreatePedido(ctx context.Context, nuevo domain.NuevoPedido) (*domain.Pedido, error) {
	var p domain.Pedido
	if err := c.post(ctx, "/pedidos", nuevo, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MarcarEntregado confirms delivery of a ready order. The backend validates
// that the order actually is LISTO_PARA_ENTREGA.
func (c *Client) MarcarEntregado(ctx context.Context, id int) error {
	return c.patch(ctx, fmt.Sprintf("/pedidos/%d/entregar", id), nil, nil)
}
