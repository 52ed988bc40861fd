package domain

// Stage records reference an order and track input/output weights. A record
// is active while its completion date is absent; there is no separate status
// enum for stages.

// PedidoResumen is the denormalized order snapshot nested in stage records.
type PedidoResumen struct {
	ID     int          `json:"id"`
	Codigo string       `json:"codigo"`
	Estado EstadoPedido `json:"estado,omitempty"`
}

// Trillado is a hulling record: green coffee in, hulled (excelso) out.
type Trillado struct {
	ID           int            `json:"id"`
	PedidoID     int            `json:"pedidoId"`
	Pedido       *PedidoResumen `json:"pedido,omitempty"`
	KilosEntrada float64        `json:"kilosEntrada"`
	KilosSalida  float64        `json:"kilosSalida,omitempty"`
	MaquinaID    *int           `json:"maquinaId,omitempty"`
	FechaIngreso string         `json:"fechaIngreso"`
	FechaSalida  *string        `json:"fechaSalida,omitempty"`
}

func (t *Trillado) Activo() bool { return t.FechaSalida == nil }

// Merma returns the hulling weight loss percentage for display.
func (t *Trillado) Merma() float64 { return Merma(t.KilosEntrada, t.KilosSalida) }

// Tostion is a roasting record. The backend names the input excelso and the
// output tostados.
type Tostion struct {
	ID           int            `json:"id"`
	PedidoID     int            `json:"pedidoId"`
	Pedido       *PedidoResumen `json:"pedido,omitempty"`
	Excelso      float64        `json:"excelso"`
	Tostados     float64        `json:"tostados,omitempty"`
	MaquinaID    *int           `json:"maquinaId,omitempty"`
	FechaIngreso string         `json:"fechaIngreso"`
	FechaSalida  *string        `json:"fechaSalida,omitempty"`
}

func (t *Tostion) Activo() bool   { return t.FechaSalida == nil }
func (t *Tostion) Merma() float64 { return Merma(t.Excelso, t.Tostados) }

// Produccion is a packaging/grinding record preparing the final presentation.
type Produccion struct {
	ID           int            `json:"id"`
	PedidoID     int            `json:"pedidoId"`
	Pedido       *PedidoResumen `json:"pedido,omitempty"`
	KilosEntrada float64        `json:"kilosEntrada"`
	KilosSalida  float64        `json:"kilosSalida,omitempty"`
	Presentacion string         `json:"presentacion,omitempty"`
	FechaInicio  string         `json:"fechaInicio"`
	FechaFin     *string        `json:"fechaFin,omitempty"`
}

func (p *Produccion) Activo() bool   { return p.FechaFin == nil }
func (p *Produccion) Merma() float64 { return Merma(p.KilosEntrada, p.KilosSalida) }

// Merma computes the shrinkage percentage between a stage's input and output
// weights: (in − out) / in × 100. Computed client-side for display only;
// it is never sent to the server.
func Merma(entrada, salida float64) float64 {
	if entrada <= 0 {
		return 0
	}
	return (entrada - salida) / entrada * 100
}

// IniciarEtapa is the intake payload shared by the stage "iniciar" endpoints.
type IniciarEtapa struct {
	PedidoID     int     `json:"pedidoId"`
	KilosEntrada float64 `json:"kilosEntrada"`
	MaquinaID    *int    `json:"maquinaId,omitempty"`
	FechaIngreso string  `json:"fechaIngreso"`
}

// FinalizarEtapa is the completion payload shared by the stage "finalizar"
// endpoints. The backend assigns the completion date and decides the order's
// next estado.
type FinalizarEtapa struct {
	KilosSalida float64 `json:"kilosSalida"`
	Observacion string  `json:"observacion,omitempty"`
}
