package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
	"github.com/stevenbetancur/pipe-app/internal/domain"
)

type pedidoLoadedMsg struct {
	pedido *domain.Pedido
	err    error
}

// pedidoDetalleView shows one order with its line items.
type pedidoDetalleView struct {
	state   *SharedState
	id      int
	pedido  *domain.Pedido
	loading bool
	err     error
}

func newPedidoDetalleView(state *SharedState, id int) *pedidoDetalleView {
	return &pedidoDetalleView{state: state, id: id, loading: true}
}

func (v *pedidoDetalleView) ID() ViewID { return ViewPedidoDetalle }

func (v *pedidoDetalleView) Title() string {
	if v.pedido != nil {
		return v.pedido.Codigo
	}
	return "Detalle"
}

func (v *pedidoDetalleView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "entregar")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refrescar")),
	}
}

func (v *pedidoDetalleView) Init() tea.Cmd {
	return v.load()
}

func (v *pedidoDetalleView) load() tea.Cmd {
	state := v.state
	id := v.id
	return func() tea.Msg {
		p, err := state.Pedido(context.Background(), id)
		return pedidoLoadedMsg{pedido: p, err: err}
	}
}

func (v *pedidoDetalleView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pedidoLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.pedido = msg.pedido
		}
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case entregaPedidoHechaMsg:
		if msg.err != nil {
			return v, showToast(toastError, api.MensajeUsuario(msg.err))
		}
		return v, tea.Batch(
			showToast(toastOK, "pedido "+msg.codigo+" entregado"),
			v.load(),
		)

	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			if v.pedido != nil {
				return v, v.confirmarEntrega()
			}
		case "r":
			v.state.Cache.Invalidate("pedidos")
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

func (v *pedidoDetalleView) confirmarEntrega() tea.Cmd {
	p := v.pedido
	if p.Estado != domain.EstadoListoParaEntrega {
		return showToast(toastError, "el pedido aún no está listo para entrega")
	}
	state := v.state
	return requestConfirm(confirmOptions{
		Titulo: "Entregar pedido",
		Cuerpo: fmt.Sprintf("¿Marcar el pedido %s como entregado? Esta acción no se puede deshacer.", p.Codigo),
	}, func(ok bool) tea.Cmd {
		if !ok {
			return nil
		}
		return marcarEntregado(state, *p)
	})
}

func (v *pedidoDetalleView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Cargando pedido...") + "\n"
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n"
	}
	p := v.pedido

	var b strings.Builder
	b.WriteString("\n" + formatter.Header("Pedido "+p.Codigo) + "\n\n")

	cliente := formatter.Dim("—")
	if p.Cliente != nil {
		cliente = p.Cliente.Nombre
	}
	b.WriteString("  Cliente:       " + cliente + "\n")
	b.WriteString("  Estado:        " + formatter.EstadoBadge(p.Estado) + "\n")
	b.WriteString("  Peso total:    " + formatter.Kilos(p.PesoTotal()) + "\n")
	if p.FechaEntrega != "" {
		b.WriteString("  Fecha entrega: " + p.FechaEntrega + "\n")
	}
	if p.Empaque != "" {
		b.WriteString("  Empaque:       " + p.Empaque + "\n")
	}
	b.WriteString("\n")

	if len(p.Detalles) > 0 {
		rows := make([][]string, 0, len(p.Detalles))
		for _, d := range p.Detalles {
			variedad := d.Variedad
			if variedad == "" {
				variedad = formatter.Dim("—")
			}
			rows = append(rows, []string{d.Presentacion, variedad, formatter.Kilos(d.Kilos)})
		}
		b.WriteString(indent(formatter.RenderTable([]string{"PRESENTACIÓN", "VARIEDAD", "KILOS"}, rows)))
	} else {
		b.WriteString("  " + formatter.Dim("Pedido sin líneas de detalle.") + "\n")
	}

	return b.String()
}
