package cli

import (
	"context"
	"net/url"
	"strconv"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/domain"
	"github.com/stevenbetancur/pipe-app/internal/query"
)

// Data access for views: every read goes through the query cache under its
// canonical key and staleness window; every write goes through Cache.Mutate
// so the affected prefixes are invalid before the success handler runs.

func (s *SharedState) Pedidos(ctx context.Context, filtro api.FiltroPedidos) ([]domain.Pedido, error) {
	key := query.Key("pedidos", filtro.Query())
	return query.Fetch(ctx, s.Cache, key, s.Cfg.GetStalePedidos(), func(ctx context.Context) ([]domain.Pedido, error) {
		return s.API.ListPedidos(ctx, filtro)
	})
}

func (s *SharedState) Pedido(ctx context.Context, id int) (*domain.Pedido, error) {
	key := "pedidos/" + strconv.Itoa(id)
	return query.Fetch(ctx, s.Cache, key, s.Cfg.GetStalePedidos(), func(ctx context.Context) (*domain.Pedido, error) {
		return s.API.GetPedido(ctx, id)
	})
}

func (s *SharedState) CrearPedido(ctx context.Context, nuevo domain.NuevoPedido) error {
	return s.Cache.Mutate(ctx, "pedidos", func(ctx context.Context) error {
		_, err := s.API.CreatePedido(ctx, nuevo)
		return err
	})
}

func (s *SharedState) MarcarPedidoEntregado(ctx context.Context, id int) error {
	return s.Cache.Mutate(ctx, "pedidos", func(ctx context.Context) error {
		return s.API.MarcarEntregado(ctx, id)
	})
}

func (s *SharedState) Trillados(ctx context.Context, filtro api.FiltroEtapa) ([]domain.Trillado, error) {
	key := query.Key("trillado", filtro.Query())
	return query.Fetch(ctx, s.Cache, key, s.Cfg.GetStaleEtapas(), func(ctx context.Context) ([]domain.Trillado, error) {
		return s.API.ListTrillado(ctx, filtro)
	})
}

func (s *SharedState) Tostiones(ctx context.Context, filtro api.FiltroEtapa) ([]domain.Tostion, error) {
	key := query.Key("tostion", filtro.Query())
	return query.Fetch(ctx, s.Cache, key, s.Cfg.GetStaleEtapas(), func(ctx context.Context) ([]domain.Tostion, error) {
		return s.API.ListTostion(ctx, filtro)
	})
}

func (s *SharedState) Producciones(ctx context.Context, filtro api.FiltroEtapa) ([]domain.Produccion, error) {
	key := query.Key("produccion", filtro.Query())
	return query.Fetch(ctx, s.Cache, key, s.Cfg.GetStaleEtapas(), func(ctx context.Context) ([]domain.Produccion, error) {
		return s.API.ListProduccion(ctx, filtro)
	})
}

func (s *SharedState) Facturas(ctx context.Context, filtro api.FiltroFacturas) ([]domain.Factura, error) {
	key := query.Key("facturas", filtro.Query())
	return query.Fetch(ctx, s.Cache, key, s.Cfg.GetStaleEtapas(), func(ctx context.Context) ([]domain.Factura, error) {
		return s.API.ListFacturas(ctx, filtro)
	})
}

func (s *SharedState) Clientes(ctx context.Context, buscar string) ([]domain.Cliente, error) {
	q := url.Values{}
	if buscar != "" {
		q.Set("buscar", buscar)
	}
	key := query.Key("clientes", q)
	return query.Fetch(ctx, s.Cache, key, s.Cfg.GetStaleCatalog(), func(ctx context.Context) ([]domain.Cliente, error) {
		return s.API.ListClientes(ctx, buscar)
	})
}

func (s *SharedState) Ciudades(ctx context.Context) ([]domain.Ciudad, error) {
	return query.Fetch(ctx, s.Cache, "ciudades", 5*s.Cfg.GetStaleCatalog(), func(ctx context.Context) ([]domain.Ciudad, error) {
		return s.API.ListCiudades(ctx)
	})
}

func (s *SharedState) Usuarios(ctx context.Context) ([]domain.Usuario, error) {
	return query.Fetch(ctx, s.Cache, "usuarios", s.Cfg.GetStaleCatalog(), func(ctx context.Context) ([]domain.Usuario, error) {
		return s.API.ListUsuarios(ctx)
	})
}

func (s *SharedState) Maquinas(ctx context.Context) ([]domain.Maquina, error) {
	return query.Fetch(ctx, s.Cache, "maquinas", s.Cfg.GetStaleCatalog(), func(ctx context.Context) ([]domain.Maquina, error) {
		return s.API.ListMaquinas(ctx)
	})
}

func (s *SharedState) Horarios(ctx context.Context) ([]domain.Horario, error) {
	return query.Fetch(ctx, s.Cache, "horarios", s.Cfg.GetStaleCatalog(), func(ctx context.Context) ([]domain.Horario, error) {
		return s.API.ListHorarios(ctx)
	})
}

// Mutar wraps Cache.Mutate for views that only need the invalidation.
func (s *SharedState) Mutar(ctx context.Context, recurso string, fn func(ctx context.Context) error) error {
	return s.Cache.Mutate(ctx, recurso, fn)
}
