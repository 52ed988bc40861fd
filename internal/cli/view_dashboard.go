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
	"github.com/stevenbetancur/pipe-app/internal/session"
)

// dashboardDataMsg carries the aggregated counters for the home screen.
type dashboardDataMsg struct {
	porEstado  map[domain.EstadoPedido]int
	totalKilos float64
	activos    [3]int // trillado, tostion, produccion
	mermaMedia float64
	pendientes int // facturas sin entregar
	err        error
}

type menuItem struct {
	label     string
	soloAdmin bool
	open      func(*SharedState) View
}

// dashboardView is the home screen: order counters per stage, active work in
// each process, and the section menu.
type dashboardView struct {
	state   *SharedState
	data    dashboardDataMsg
	loading bool
	cursor  int
}

func newDashboardView(state *SharedState) *dashboardView {
	return &dashboardView{state: state, loading: true}
}

func (v *dashboardView) ID() ViewID    { return ViewDashboard }
func (v *dashboardView) Title() string { return "Inicio" }

func (v *dashboardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "abrir")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refrescar")),
		key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tema")),
	}
}

func (v *dashboardView) menu() []menuItem {
	items := []menuItem{
		{label: "Pedidos", open: func(s *SharedState) View { return newPedidosView(s) }},
		{label: "Trillado", open: func(s *SharedState) View { return newEtapaView(s, etapaTrillado) }},
		{label: "Tostión", open: func(s *SharedState) View { return newEtapaView(s, etapaTostion) }},
		{label: "Producción", open: func(s *SharedState) View { return newEtapaView(s, etapaProduccion) }},
		{label: "Facturas", open: func(s *SharedState) View { return newFacturasView(s) }},
		{label: "Clientes", open: func(s *SharedState) View { return newClientesView(s) }},
		{label: "Usuarios", soloAdmin: true, open: func(s *SharedState) View { return newUsuariosView(s) }},
		{label: "Máquinas", soloAdmin: true, open: func(s *SharedState) View { return newMaquinasView(s) }},
		{label: "Horarios", soloAdmin: true, open: func(s *SharedState) View { return newHorariosView(s) }},
	}
	if v.state.EsAdmin() {
		return items
	}
	visible := items[:0:0]
	for _, it := range items {
		if !it.soloAdmin {
			visible = append(visible, it)
		}
	}
	return visible
}

func (v *dashboardView) Init() tea.Cmd {
	return v.load()
}

func (v *dashboardView) load() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		ctx := context.Background()
		var data dashboardDataMsg

		pedidos, err := state.Pedidos(ctx, api.FiltroPedidos{})
		if err != nil {
			data.err = err
			return data
		}
		data.porEstado = make(map[domain.EstadoPedido]int)
		for i := range pedidos {
			data.porEstado[pedidos[i].Estado]++
			if pedidos[i].Estado != domain.EstadoEntregado {
				data.totalKilos += pedidos[i].PesoTotal()
			}
		}

		activos := true
		filtro := api.FiltroEtapa{Activos: &activos}
		if tr, err := state.Trillados(ctx, filtro); err == nil {
			data.activos[0] = len(tr)
		}
		if to, err := state.Tostiones(ctx, filtro); err == nil {
			data.activos[1] = len(to)
		}
		if pr, err := state.Producciones(ctx, filtro); err == nil {
			data.activos[2] = len(pr)
		}

		// Average loss over finished millings, the KPI the plant watches.
		if todos, err := state.Trillados(ctx, api.FiltroEtapa{}); err == nil {
			var suma float64
			var n int
			for i := range todos {
				if !todos[i].Activo() {
					suma += todos[i].Merma()
					n++
				}
			}
			if n > 0 {
				data.mermaMedia = suma / float64(n)
			}
		}

		pendientes := true
		if fs, err := state.Facturas(ctx, api.FiltroFacturas{Pendientes: &pendientes}); err == nil {
			data.pendientes = len(fs)
		}

		return data
	}
}

// cambiarTema flips the palette and persists the choice for the next run.
func (v *dashboardView) cambiarTema() tea.Cmd {
	var nuevo session.Tema
	if v.state.Sesion.Tema() == session.TemaOscuro {
		nuevo = session.TemaClaro
		formatter.ApplyLightTheme()
	} else {
		nuevo = session.TemaOscuro
		formatter.ApplyDarkTheme()
	}
	if err := v.state.Sesion.SetTema(nuevo); err != nil {
		return showToast(toastError, "No se pudo guardar el tema")
	}
	return showToast(toastInfo, fmt.Sprintf("Tema %s activado", nuevo))
}

func (v *dashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		v.loading = false
		v.data = msg
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		items := v.menu()
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(items)-1 {
				v.cursor++
			}
		case "enter":
			if v.cursor < len(items) {
				return v, pushView(items[v.cursor].open(v.state))
			}
		case "r":
			v.state.Cache.Invalidate("pedidos", "facturas")
			v.loading = true
			return v, v.load()
		case "t":
			return v, v.cambiarTema()
		}
	}
	return v, nil
}

func (v *dashboardView) View() string {
	var b strings.Builder
	b.WriteString("\n" + formatter.Header("Panel de control") + "\n\n")

	if v.loading {
		b.WriteString("  " + formatter.Dim("Cargando indicadores...") + "\n\n")
	} else if v.data.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.data.err)) + "\n\n")
	} else {
		b.WriteString(v.renderKPIs())
	}

	b.WriteString("  " + formatter.Bold("Secciones") + "\n")
	for i, it := range v.menu() {
		cursor := "  "
		label := it.label
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			label = formatter.StyleBold.Render(label)
		}
		b.WriteString("  " + cursor + label + "\n")
	}

	return b.String()
}

func (v *dashboardView) renderKPIs() string {
	d := v.data
	var b strings.Builder

	enProceso := 0
	for estado, n := range d.porEstado {
		if estado != domain.EstadoEntregado {
			enProceso += n
		}
	}

	b.WriteString(fmt.Sprintf("  %s %s en proceso  ·  %s  ·  %s facturas pendientes\n\n",
		formatter.StyleBold.Render(fmt.Sprintf("%d", enProceso)),
		pluralPedidos(enProceso),
		formatter.Kilos(d.totalKilos),
		formatter.StyleBold.Render(fmt.Sprintf("%d", d.pendientes)),
	))

	rows := make([][]string, 0, len(domain.EstadosPedido))
	for _, estado := range domain.EstadosPedido {
		if n := d.porEstado[estado]; n > 0 {
			rows = append(rows, []string{formatter.EstadoBadge(estado), fmt.Sprintf("%d", n)})
		}
	}
	if len(rows) > 0 {
		b.WriteString(indent(formatter.RenderTable([]string{"ESTADO", "PEDIDOS"}, rows)))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("  En planta:  trillado %d · tostión %d · producción %d    merma media %s\n\n",
		d.activos[0], d.activos[1], d.activos[2], formatter.MermaPct(d.mermaMedia)))

	return b.String()
}

func pluralPedidos(n int) string {
	if n == 1 {
		return "pedido"
	}
	return "pedidos"
}

// indent prefixes every line with two spaces.
func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := range lines {
		lines[i] = "  " + lines[i]
	}
	return strings.Join(lines, "\n") + "\n"
}
