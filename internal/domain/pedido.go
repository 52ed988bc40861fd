package domain

// DetallePedido is one line item of an order: a presentation type, a coffee
// variety and its weight in kilograms.
type DetallePedido struct {
	ID           int     `json:"id,omitempty"`
	Presentacion string  `json:"presentacion"`
	Variedad     string  `json:"variedad,omitempty"`
	Kilos        float64 `json:"kilos"`
}

// Pedido mirrors the backend order record. The lifecycle is fully
// server-driven; this struct is a read-only snapshot keyed by the query
// parameters that fetched it.
type Pedido struct {
	ID           int             `json:"id"`
	Codigo       string          `json:"codigo"`
	Kilos        float64         `json:"kilos,omitempty"`
	Presentacion string          `json:"presentacion,omitempty"`
	Empaque      string          `json:"empaque,omitempty"`
	FechaEntrega string          `json:"fechaEntrega,omitempty"`
	Estado       EstadoPedido    `json:"estado"`
	ClienteID    int             `json:"clienteId,omitempty"`
	Cliente      *ClienteResumen `json:"cliente,omitempty"`
	Detalles     []DetallePedido `json:"detalles,omitempty"`
}

// ClienteResumen is the denormalized client snapshot the API nests inside an
// order. It is read-only; the full record lives under /clients.
type ClienteResumen struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
}

// PesoTotal returns the order weight: the sum of its line items, falling
// back to the single kilos field for orders registered without detalles.
func (p *Pedido) PesoTotal() float64 {
	if len(p.Detalles) == 0 {
		return p.Kilos
	}
	var total float64
	for _, d := range p.Detalles {
		total += d.Kilos
	}
	return total
}

// NuevoPedido is the create payload for POST /pedidos. Line items travel
// nested under detalles in a single request.
type NuevoPedido struct {
	ClienteID    int             `json:"clienteId"`
	FechaEntrega string          `json:"fechaEntrega"`
	Empaque      string          `json:"empaque,omitempty"`
	Observacion  string          `json:"observacion,omitempty"`
	Detalles     []DetallePedido `json:"detalles"`
}
