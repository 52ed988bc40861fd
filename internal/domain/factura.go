package domain

import "github.com/shopspring/decimal"

// Factura is the billing document generated in the final stage. Total is
// decimal to mirror the backend's money representation without float drift.
type Factura struct {
	ID           int             `json:"id"`
	Numero       string          `json:"numero"`
	PedidoID     int             `json:"pedidoId"`
	Pedido       *PedidoResumen  `json:"pedido,omitempty"`
	Total        decimal.Decimal `json:"total"`
	FechaEmision string          `json:"fechaEmision"`
	FechaEntrega *string         `json:"fechaEntrega,omitempty"`
	Entregado    bool            `json:"entregado"`
}

// Pendiente reports whether the invoice still awaits delivery confirmation.
func (f *Factura) Pendiente() bool { return !f.Entregado }

// NuevaFactura is the create payload for POST /facturas.
type NuevaFactura struct {
	PedidoID     int             `json:"pedidoId"`
	Total        decimal.Decimal `json:"total"`
	FechaEmision string          `json:"fechaEmision"`
	Observacion  string          `json:"observacion,omitempty"`
}
