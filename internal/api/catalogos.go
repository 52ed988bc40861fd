package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

// Catalog resources: clients, cities, users, machines and schedules. All are
// plain CRUD with no transition endpoints.

func (c *Client) ListClientes(ctx context.Context, buscar string) ([]domain.Cliente, error) {
	q := url.Values{}
	if buscar != "" {
		q.Set("buscar", buscar)
	}
	var out []domain.Cliente
	if err := c.get(ctx, "/clients", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCliente(ctx context.Context, id int) (*domain.Cliente, error) {
	var cl domain.Cliente
	if err := c.get(ctx, fmt.Sprintf("/clients/%d", id), nil, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *Client) CreateCliente(ctx context.Context, nuevo domain.NuevoCliente) (*domain.Cliente, error) {
	var cl domain.Cliente
	if err := c.post(ctx, "/clients", nuevo, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *Client) UpdateCliente(ctx context.Context, id int, datos domain.NuevoCliente) (*domain.Cliente, error) {
	var cl domain.Cliente
	if err := c.put(ctx, fmt.Sprintf("/clients/%d", id), datos, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *Client) ListCiudades(ctx context.Context) ([]domain.Ciudad, error) {
	var out []domain.Ciudad
	if err := c.get(ctx, "/ciudades", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListUsuarios(ctx context.Context) ([]domain.Usuario, error) {
	var out []domain.Usuario
	if err := c.get(ctx, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUsuario(ctx context.Context, nuevo domain.NuevoUsuario) (*domain.Usuario, error) {
	var u domain.Usuario
	if err := c.post(ctx, "/users", nuevo, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUsuario(ctx context.Context, id int, datos domain.NuevoUsuario) (*domain.Usuario, error) {
	var u domain.Usuario
	if err := c.put(ctx, fmt.Sprintf("/users/%d", id), datos, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListMaquinas(ctx context.Context) ([]domain.Maquina, error) {
	var out []domain.Maquina
	if err := c.get(ctx, "/maquinas", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMaquina(ctx context.Context, nueva domain.NuevaMaquina) (*domain.Maquina, error) {
	var m domain.Maquina
	if err := c.post(ctx, "/maquinas", nueva, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) UpdateMaquina(ctx context.Context, id int, datos domain.NuevaMaquina) (*domain.Maquina, error) {
	var m domain.Maquina
	if err := c.put(ctx, fmt.Sprintf("/maquinas/%d", id), datos, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) ListHorarios(ctx context.Context) ([]domain.Horario, error) {
	var out []domain.Horario
	if err := c.get(ctx, "/horarios", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateHorario(ctx context.Context, nuevo domain.NuevoHorario) (*domain.Horario, error) {
	var h domain.Horario
	if err := c.post(ctx, "/horarios", nuevo, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) UpdateHorario(ctx context.Context, id int, datos domain.NuevoHorario) (*domain.Horario, error) {
	var h domain.Horario
	if err := c.put(ctx, fmt.Sprintf("/horarios/%d", id), datos, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
