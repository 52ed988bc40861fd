package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
	"github.com/stevenbetancur/pipe-app/internal/domain"
)

type facturasLoadedMsg struct {
	facturas []domain.Factura
	err      error
}

type facturaEntregadaMsg struct {
	numero string
	err    error
}

// facturasView lists invoices, by default only the undelivered ones.
type facturasView struct {
	state    *SharedState
	facturas []domain.Factura
	cursor   int
	loading  bool
	err      error

	todas bool
}

func newFacturasView(state *SharedState) *facturasView {
	return &facturasView{state: state, loading: true}
}

func (v *facturasView) ID() ViewID    { return ViewFacturas }
func (v *facturasView) Title() string { return "Facturas" }

func (v *facturasView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nueva")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "entregar")),
		key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "todas")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refrescar")),
	}
}

func (v *facturasView) filtro() api.FiltroFacturas {
	if v.todas {
		return api.FiltroFacturas{}
	}
	pendientes := true
	return api.FiltroFacturas{Pendientes: &pendientes}
}

func (v *facturasView) Init() tea.Cmd {
	return v.load()
}

func (v *facturasView) load() tea.Cmd {
	state := v.state
	filtro := v.filtro()
	return func() tea.Msg {
		facturas, err := state.Facturas(context.Background(), filtro)
		return facturasLoadedMsg{facturas: facturas, err: err}
	}
}

func (v *facturasView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case facturasLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.facturas = msg.facturas
			if v.cursor >= len(v.facturas) {
				v.cursor = max(len(v.facturas)-1, 0)
			}
		}
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case facturaEntregadaMsg:
		if msg.err != nil {
			return v, showToast(toastError, api.MensajeUsuario(msg.err))
		}
		return v, tea.Batch(
			showToast(toastOK, "factura "+msg.numero+" entregada"),
			v.load(),
		)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.facturas)-1 {
				v.cursor++
			}
		case "n":
			return v, pushView(newFacturaWizard(v.state))
		case "e":
			if v.cursor < len(v.facturas) {
				return v, v.confirmarEntrega(v.facturas[v.cursor])
			}
		case "t":
			v.todas = !v.todas
			v.cursor = 0
			v.loading = true
			return v, v.load()
		case "r":
			v.state.Cache.Invalidate("facturas")
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

func (v *facturasView) confirmarEntrega(f domain.Factura) tea.Cmd {
	if f.Entregado {
		return showToast(toastInfo, "la factura "+f.Numero+" ya fue entregada")
	}
	state := v.state
	return requestConfirm(confirmOptions{
		Titulo: "Entregar factura",
		Cuerpo: fmt.Sprintf("¿Confirmar la entrega de la factura %s por $%s?", f.Numero, f.Total.StringFixed(0)),
	}, func(ok bool) tea.Cmd {
		if !ok {
			return nil
		}
		return func() tea.Msg {
			err := state.Mutar(context.Background(), "facturas", func(ctx context.Context) error {
				return state.API.ConfirmarEntregaFactura(ctx, f.ID)
			})
			return facturaEntregadaMsg{numero: f.Numero, err: err}
		}
	})
}

func (v *facturasView) View() string {
	var b strings.Builder
	b.WriteString("\n" + formatter.Header("Facturas") + "\n\n")

	if v.todas {
		b.WriteString("  " + formatter.Dim("mostrando todas, incluidas las entregadas") + "\n\n")
	}

	headers := []string{"NÚMERO", "PEDIDO", "TOTAL", "EMISIÓN", "ESTADO"}
	if v.loading {
		b.WriteString(indent(formatter.RenderSkeleton(headers, 4)))
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n")
		return b.String()
	}
	if len(v.facturas) == 0 {
		b.WriteString("  " + formatter.Dim("No hay facturas en esta vista.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(v.facturas))
	for i := range v.facturas {
		f := &v.facturas[i]
		cursor := " "
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸")
		}
		estado := formatter.StyleYellow.Render("pendiente")
		if f.Entregado {
			estado = formatter.StyleGreen.Render("✓ entregada")
		}
		rows = append(rows, []string{
			cursor + " " + formatter.StyleGreen.Render(f.Numero),
			resumenPedido(f.Pedido, f.PedidoID),
			"$" + f.Total.StringFixed(0),
			f.FechaEmision,
			estado,
		})
	}
	b.WriteString(indent(formatter.RenderTable(headers, rows)))
	return b.String()
}

type pedidosParaFacturaMsg struct {
	pedidos []domain.Pedido
	err     error
}

type facturaCreadaMsg struct {
	err error
}

// facturaWizard creates an invoice for an order in billing stage.
type facturaWizard struct {
	state *SharedState
	form  *huh.Form

	cargando bool
	enviando bool

	pedidoID string
	total    string
	fecha    string
	nota     string
}

func newFacturaWizard(state *SharedState) *facturaWizard {
	return &facturaWizard{state: state, cargando: true}
}

func (v *facturaWizard) ID() ViewID    { return ViewForm }
func (v *facturaWizard) Title() string { return "Nueva factura" }

func (v *facturaWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "siguiente")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *facturaWizard) Init() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		pedidos, err := state.Pedidos(context.Background(), api.FiltroPedidos{Estado: domain.EstadoFacturacion})
		return pedidosParaFacturaMsg{pedidos: pedidos, err: err}
	}
}

func validateTotal(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.IsZero() {
		return fmt.Errorf("ingresa un total mayor que cero")
	}
	return nil
}

func (v *facturaWizard) buildForm(pedidos []domain.Pedido) *huh.Form {
	opts := make([]huh.Option[string], 0, len(pedidos))
	for i := range pedidos {
		p := &pedidos[i]
		label := fmt.Sprintf("%s · %s", p.Codigo, formatter.Kilos(p.PesoTotal()))
		opts = append(opts, huh.NewOption(label, strconv.Itoa(p.ID)))
	}
	v.fecha = hoy()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pedido").
				Options(opts...).
				Value(&v.pedidoID),
			huh.NewInput().
				Title("Total").
				Placeholder("1250000").
				Validate(validateTotal).
				Value(&v.total),
			huh.NewInput().
				Title("Fecha de emisión").
				Validate(validateFecha).
				Value(&v.fecha),
			huh.NewInput().
				Title("Observación").
				Value(&v.nota),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *facturaWizard) enviar() tea.Cmd {
	state := v.state
	pedidoID, _ := strconv.Atoi(v.pedidoID)
	total, _ := decimal.NewFromString(strings.TrimSpace(v.total))
	nueva := domain.NuevaFactura{
		PedidoID:     pedidoID,
		Total:        total,
		FechaEmision: v.fecha,
		Observacion:  v.nota,
	}
	return func() tea.Msg {
		err := state.Mutar(context.Background(), "facturas", func(ctx context.Context) error {
			_, err := state.API.CreateFactura(ctx, nueva)
			return err
		})
		return facturaCreadaMsg{err: err}
	}
}

func (v *facturaWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pedidosParaFacturaMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		if len(msg.pedidos) == 0 {
			return v, tea.Batch(
				showToast(toastInfo, "no hay pedidos en facturación"),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		v.cargando = false
		v.form = v.buildForm(msg.pedidos)
		return v, v.form.Init()

	case facturaCreadaMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		return v, tea.Batch(
			showToast(toastOK, "factura registrada"),
			func() tea.Msg { return wizardCompleteMsg{} },
		)

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return v, func() tea.Msg { return wizardCompleteMsg{} }
		}
	}

	if v.form == nil || v.enviando {
		return v, nil
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}
	if v.form.State == huh.StateCompleted {
		v.enviando = true
		return v, tea.Batch(cmd, v.enviar())
	}
	return v, cmd
}

func (v *facturaWizard) View() string {
	out := "\n" + formatter.Header("Nueva factura") + "\n\n"
	if v.cargando {
		return out + "  " + formatter.Dim("Cargando pedidos en facturación...") + "\n"
	}
	if v.enviando {
		return out + "  " + formatter.Dim("Registrando factura...") + "\n"
	}
	return out + v.form.View()
}
