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

// etapaFila is the row shape shared by the three stage boards.
type etapaFila struct {
	id      int
	pedido  string
	entrada float64
	salida  float64
	inicio  string
	fin     *string
}

func (f etapaFila) activa() bool   { return f.fin == nil }
func (f etapaFila) merma() float64 { return domain.Merma(f.entrada, f.salida) }

// etapaConfig parameterizes the board per process: labels, cache prefix and
// the API calls behind each action.
type etapaConfig struct {
	recurso      string
	titulo       string
	entradaLabel string
	salidaLabel  string
	proceso      domain.Proceso

	cargar    func(ctx context.Context, s *SharedState, filtro api.FiltroEtapa) ([]etapaFila, error)
	iniciar   func(ctx context.Context, c *api.Client, intake domain.IniciarEtapa) error
	finalizar func(ctx context.Context, c *api.Client, id int, fin domain.FinalizarEtapa) error
}

func resumenPedido(p *domain.PedidoResumen, pedidoID int) string {
	if p != nil {
		return p.Codigo
	}
	return fmt.Sprintf("#%d", pedidoID)
}

var etapaTrillado = etapaConfig{
	recurso:      "trillado",
	titulo:       "Trillado",
	entradaLabel: "Kilos entrada",
	salidaLabel:  "Kilos salida",
	proceso:      domain.ProcesoTrillado,
	cargar: func(ctx context.Context, s *SharedState, filtro api.FiltroEtapa) ([]etapaFila, error) {
		items, err := s.Trillados(ctx, filtro)
		if err != nil {
			return nil, err
		}
		filas := make([]etapaFila, len(items))
		for i := range items {
			t := &items[i]
			filas[i] = etapaFila{t.ID, resumenPedido(t.Pedido, t.PedidoID), t.KilosEntrada, t.KilosSalida, t.FechaIngreso, t.FechaSalida}
		}
		return filas, nil
	},
	iniciar: func(ctx context.Context, c *api.Client, intake domain.IniciarEtapa) error {
		_, err := c.IniciarTrillado(ctx, intake)
		return err
	},
	finalizar: func(ctx context.Context, c *api.Client, id int, fin domain.FinalizarEtapa) error {
		return c.FinalizarTrillado(ctx, id, fin)
	},
}

var etapaTostion = etapaConfig{
	recurso:      "tostion",
	titulo:       "Tostión",
	entradaLabel: "Excelso",
	salidaLabel:  "Tostados",
	proceso:      domain.ProcesoTostion,
	cargar: func(ctx context.Context, s *SharedState, filtro api.FiltroEtapa) ([]etapaFila, error) {
		items, err := s.Tostiones(ctx, filtro)
		if err != nil {
			return nil, err
		}
		filas := make([]etapaFila, len(items))
		for i := range items {
			t := &items[i]
			filas[i] = etapaFila{t.ID, resumenPedido(t.Pedido, t.PedidoID), t.Excelso, t.Tostados, t.FechaIngreso, t.FechaSalida}
		}
		return filas, nil
	},
	iniciar: func(ctx context.Context, c *api.Client, intake domain.IniciarEtapa) error {
		_, err := c.IniciarTostion(ctx, intake)
		return err
	},
	finalizar: func(ctx context.Context, c *api.Client, id int, fin domain.FinalizarEtapa) error {
		return c.FinalizarTostion(ctx, id, fin)
	},
}

var etapaProduccion = etapaConfig{
	recurso:      "produccion",
	titulo:       "Producción",
	entradaLabel: "Kilos entrada",
	salidaLabel:  "Kilos salida",
	proceso:      domain.ProcesoProduccion,
	cargar: func(ctx context.Context, s *SharedState, filtro api.FiltroEtapa) ([]etapaFila, error) {
		items, err := s.Producciones(ctx, filtro)
		if err != nil {
			return nil, err
		}
		filas := make([]etapaFila, len(items))
		for i := range items {
			p := &items[i]
			filas[i] = etapaFila{p.ID, resumenPedido(p.Pedido, p.PedidoID), p.KilosEntrada, p.KilosSalida, p.FechaInicio, p.FechaFin}
		}
		return filas, nil
	},
	iniciar: func(ctx context.Context, c *api.Client, intake domain.IniciarEtapa) error {
		_, err := c.IniciarProduccion(ctx, intake)
		return err
	},
	finalizar: func(ctx context.Context, c *api.Client, id int, fin domain.FinalizarEtapa) error {
		return c.FinalizarProduccion(ctx, id, fin)
	},
}

type etapaLoadedMsg struct {
	recurso string
	filas   []etapaFila
	err     error
}

// etapaView is the board for one process. It opens on the active batches;
// 'h' switches to the full history.
type etapaView struct {
	state   *SharedState
	cfg     etapaConfig
	filas   []etapaFila
	cursor  int
	loading bool
	err     error

	historico bool
}

func newEtapaView(state *SharedState, cfg etapaConfig) *etapaView {
	return &etapaView{state: state, cfg: cfg, loading: true}
}

func (v *etapaView) ID() ViewID    { return ViewEtapa }
func (v *etapaView) Title() string { return v.cfg.titulo }

func (v *etapaView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "iniciar")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finalizar")),
		key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "histórico")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refrescar")),
	}
}

func (v *etapaView) filtro() api.FiltroEtapa {
	if v.historico {
		return api.FiltroEtapa{}
	}
	activos := true
	return api.FiltroEtapa{Activos: &activos}
}

func (v *etapaView) Init() tea.Cmd {
	return v.load()
}

func (v *etapaView) load() tea.Cmd {
	state := v.state
	cfg := v.cfg
	filtro := v.filtro()
	return func() tea.Msg {
		filas, err := cfg.cargar(context.Background(), state, filtro)
		return etapaLoadedMsg{recurso: cfg.recurso, filas: filas, err: err}
	}
}

func (v *etapaView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case etapaLoadedMsg:
		if msg.recurso != v.cfg.recurso {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.filas = msg.filas
			if v.cursor >= len(v.filas) {
				v.cursor = max(len(v.filas)-1, 0)
			}
		}
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.filas)-1 {
				v.cursor++
			}
		case "i":
			return v, pushView(newIniciarEtapaWizard(v.state, v.cfg))
		case "f":
			if v.cursor < len(v.filas) {
				fila := v.filas[v.cursor]
				if !fila.activa() {
					return v, showToast(toastInfo, "ese lote ya está finalizado")
				}
				return v, pushView(newFinalizarEtapaWizard(v.state, v.cfg, fila))
			}
		case "h":
			v.historico = !v.historico
			v.cursor = 0
			v.loading = true
			return v, v.load()
		case "r":
			v.state.Cache.Invalidate(v.cfg.recurso)
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

func (v *etapaView) View() string {
	var b strings.Builder
	b.WriteString("\n" + formatter.Header(v.cfg.titulo) + "\n\n")

	if v.historico {
		b.WriteString("  " + formatter.Dim("mostrando histórico completo") + "\n\n")
	}

	headers := []string{"PEDIDO", strings.ToUpper(v.cfg.entradaLabel), strings.ToUpper(v.cfg.salidaLabel), "MERMA", "INGRESO", "ESTADO"}

	if v.loading {
		b.WriteString(indent(formatter.RenderSkeleton(headers, 4)))
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n")
		return b.String()
	}
	if len(v.filas) == 0 {
		b.WriteString("  " + formatter.Dim("No hay lotes en esta vista.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(v.filas))
	for i, f := range v.filas {
		cursor := " "
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸")
		}
		salida := formatter.Dim("—")
		merma := formatter.Dim("—")
		if !f.activa() {
			salida = formatter.Kilos(f.salida)
			merma = formatter.MermaPct(f.merma())
		}
		rows = append(rows, []string{
			cursor + " " + formatter.StyleGreen.Render(f.pedido),
			formatter.Kilos(f.entrada),
			salida,
			merma,
			f.inicio,
			formatter.ActivoBadge(f.activa()),
		})
	}
	b.WriteString(indent(formatter.RenderTable(headers, rows)))
	return b.String()
}
