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

// pedidosLoadedMsg signals the order list arrived.
type pedidosLoadedMsg struct {
	pedidos []domain.Pedido
	err     error
}

// estadoFiltros cycles through: no filter, then each stage in order.
var estadoFiltros = append([]domain.EstadoPedido{""}, domain.EstadosPedido...)

// pedidosView lists orders with a stage filter and free-text search.
type pedidosView struct {
	state   *SharedState
	pedidos []domain.Pedido
	cursor  int
	loading bool
	err     error

	filtroIdx int // index into estadoFiltros

	buscando bool
	buscar   string
}

func newPedidosView(state *SharedState) *pedidosView {
	return &pedidosView{state: state, loading: true}
}

func (v *pedidosView) ID() ViewID    { return ViewPedidos }
func (v *pedidosView) Title() string { return "Pedidos" }

func (v *pedidosView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detalle")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nuevo")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "entregar")),
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "estado")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
	}
}

func (v *pedidosView) filtro() api.FiltroPedidos {
	return api.FiltroPedidos{
		Estado: estadoFiltros[v.filtroIdx],
		Buscar: v.buscar,
	}
}

func (v *pedidosView) Init() tea.Cmd {
	return v.load()
}

func (v *pedidosView) load() tea.Cmd {
	state := v.state
	filtro := v.filtro()
	return func() tea.Msg {
		pedidos, err := state.Pedidos(context.Background(), filtro)
		return pedidosLoadedMsg{pedidos: pedidos, err: err}
	}
}

func (v *pedidosView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pedidosLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.pedidos = msg.pedidos
			if v.cursor >= len(v.pedidos) {
				v.cursor = max(len(v.pedidos)-1, 0)
			}
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
		if v.buscando {
			return v.updateBusqueda(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *pedidosView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.pedidos)-1 {
			v.cursor++
		}
	case "enter":
		if v.cursor < len(v.pedidos) {
			return v, pushView(newPedidoDetalleView(v.state, v.pedidos[v.cursor].ID))
		}
	case "n":
		return v, pushView(newPedidoWizard(v.state))
	case "e":
		if v.cursor < len(v.pedidos) {
			return v, v.confirmarEntrega(v.pedidos[v.cursor])
		}
	case "tab":
		v.filtroIdx = (v.filtroIdx + 1) % len(estadoFiltros)
		v.cursor = 0
		v.loading = true
		return v, v.load()
	case "/":
		v.buscando = true
		v.buscar = ""
	case "r":
		v.state.Cache.Invalidate("pedidos")
		v.loading = true
		return v, v.load()
	}
	return v, nil
}

func (v *pedidosView) updateBusqueda(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.buscando = false
		v.buscar = ""
		v.cursor = 0
		return v, v.load()
	case tea.KeyEnter:
		v.buscando = false
		v.cursor = 0
		v.loading = true
		return v, v.load()
	case tea.KeyBackspace:
		if len(v.buscar) > 0 {
			v.buscar = v.buscar[:len(v.buscar)-1]
		}
	default:
		if len(msg.Runes) == 1 {
			v.buscar += string(msg.Runes)
		}
	}
	return v, nil
}

// confirmarEntrega asks before the irreversible stage transition.
func (v *pedidosView) confirmarEntrega(p domain.Pedido) tea.Cmd {
	if p.Estado != domain.EstadoListoParaEntrega {
		return showToast(toastError, fmt.Sprintf("el pedido %s no está listo para entrega", p.Codigo))
	}
	state := v.state
	return requestConfirm(confirmOptions{
		Titulo: "Entregar pedido",
		Cuerpo: fmt.Sprintf("¿Marcar el pedido %s como entregado? Esta acción no se puede deshacer.", p.Codigo),
	}, func(ok bool) tea.Cmd {
		if !ok {
			return nil
		}
		return marcarEntregado(state, p)
	})
}

// entregaPedidoHechaMsg reports the delivery mutation back to whichever view
// requested it, so it can toast and reload.
type entregaPedidoHechaMsg struct {
	codigo string
	err    error
}

func marcarEntregado(state *SharedState, p domain.Pedido) tea.Cmd {
	return func() tea.Msg {
		err := state.MarcarPedidoEntregado(context.Background(), p.ID)
		return entregaPedidoHechaMsg{codigo: p.Codigo, err: err}
	}
}

func (v *pedidosView) View() string {
	var b strings.Builder
	b.WriteString("\n")

	if v.buscando {
		b.WriteString("  " + formatter.StyleYellow.Render("/") + " " + v.buscar + "█\n\n")
	} else if estado := estadoFiltros[v.filtroIdx]; estado != "" {
		b.WriteString("  filtro: " + formatter.EstadoBadge(estado) + "\n\n")
	}

	if v.loading {
		b.WriteString(indent(formatter.RenderSkeleton(pedidoHeaders, 5)))
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n")
		return b.String()
	}
	if len(v.pedidos) == 0 {
		b.WriteString("  " + formatter.Dim("No hay pedidos con este filtro.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(v.pedidos))
	for i := range v.pedidos {
		p := &v.pedidos[i]
		cursor := " "
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸")
		}
		cliente := formatter.Dim("—")
		if p.Cliente != nil {
			cliente = p.Cliente.Nombre
		}
		rows = append(rows, []string{
			cursor + " " + formatter.StyleGreen.Render(p.Codigo),
			cliente,
			formatter.Kilos(p.PesoTotal()),
			p.FechaEntrega,
			formatter.EstadoBadge(p.Estado),
		})
	}
	b.WriteString(indent(formatter.RenderTable(pedidoHeaders, rows)))
	return b.String()
}

var pedidoHeaders = []string{"CÓDIGO", "CLIENTE", "PESO", "ENTREGA", "ESTADO"}
