package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPesoTotal_SumaDetalles(t *testing.T) {
	p := &Pedido{
		Kilos: 10, // ignored once detalles exist
		Detalles: []DetallePedido{
			{Presentacion: "CPS", Kilos: 50},
			{Presentacion: "EXCELSO", Variedad: "CASTILLO", Kilos: 25.5},
		},
	}
	assert.InDelta(t, 75.5, p.PesoTotal(), 0.0001)
}

func TestPesoTotal_SinDetallesUsaKilos(t *testing.T) {
	p := &Pedido{Kilos: 120}
	assert.InDelta(t, 120, p.PesoTotal(), 0.0001)
}

func TestMerma(t *testing.T) {
	tests := []struct {
		name    string
		entrada float64
		salida  float64
		want    float64
	}{
		{"perdida tipica de trillado", 100, 80, 20},
		{"sin perdida", 50, 50, 0},
		{"entrada cero no divide", 0, 10, 0},
		{"entrada negativa no divide", -5, 0, 0},
		{"merma fraccional", 70, 59.5, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Merma(tt.entrada, tt.salida), 0.0001)
		})
	}
}

func TestEtapa_ActivoPorFechaSalida(t *testing.T) {
	activo := &Trillado{PedidoID: 1, KilosEntrada: 100, FechaIngreso: "2026-02-01"}
	assert.True(t, activo.Activo())

	fecha := "2026-02-03"
	cerrado := &Trillado{PedidoID: 1, KilosEntrada: 100, KilosSalida: 82, FechaIngreso: "2026-02-01", FechaSalida: &fecha}
	assert.False(t, cerrado.Activo())
	assert.InDelta(t, 18, cerrado.Merma(), 0.0001)
}

func TestEstadoPedido_Etiqueta(t *testing.T) {
	assert.Equal(t, "Listo para entrega", EstadoListoParaEntrega.Etiqueta())
	assert.Equal(t, "En tostión", EstadoTostion.Etiqueta())
	// Unknown estados from a newer backend render verbatim.
	assert.Equal(t, "DESCONOCIDO", EstadoPedido("DESCONOCIDO").Etiqueta())
}

func TestHorario_FranjasDe(t *testing.T) {
	h := &Horario{
		Nombre: "Turno mañana",
		Franjas: []Franja{
			{Dia: Lunes, HoraInicio: "06:00", HoraFin: "14:00"},
			{Dia: Martes, HoraInicio: "06:00", HoraFin: "14:00"},
			{Dia: Lunes, HoraInicio: "15:00", HoraFin: "18:00"},
		},
	}
	assert.Len(t, h.FranjasDe(Lunes), 2)
	assert.Len(t, h.FranjasDe(Domingo), 0)
}
