package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
	"github.com/stevenbetancur/pipe-app/internal/domain"
)

type clientesParaPedidoMsg struct {
	clientes []domain.Cliente
	err      error
}

type pedidoCreadoMsg struct {
	err error
}

// pedidoWizard collects a new order: header fields first, then a line-item
// loop that accumulates detalles until the user stops adding.
type pedidoWizard struct {
	state *SharedState
	form  *huh.Form

	fase int // 0 cargando clientes, 1 cabecera, 2 detalle, 3 enviando, 4 reintento

	clienteID string
	fecha     string
	empaque   string

	presentacion string
	variedad     string
	kilos        string
	otraLinea    bool
	reintentar   bool

	detalles []domain.DetallePedido
	errMsg   string
}

func newPedidoWizard(state *SharedState) *pedidoWizard {
	return &pedidoWizard{state: state}
}

func (v *pedidoWizard) ID() ViewID    { return ViewForm }
func (v *pedidoWizard) Title() string { return "Nuevo pedido" }

func (v *pedidoWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "siguiente")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *pedidoWizard) Init() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		clientes, err := state.Clientes(context.Background(), "")
		return clientesParaPedidoMsg{clientes: clientes, err: err}
	}
}

func (v *pedidoWizard) formCabecera(clientes []domain.Cliente) *huh.Form {
	opts := make([]huh.Option[string], 0, len(clientes))
	for _, c := range clientes {
		opts = append(opts, huh.NewOption(c.Nombre, strconv.Itoa(c.ID)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Cliente").
				Options(opts...).
				Value(&v.clienteID),
			huh.NewInput().
				Title("Fecha de entrega").
				Placeholder(hoy()).
				Validate(validateFecha).
				Value(&v.fecha),
			huh.NewInput().
				Title("Empaque").
				Placeholder("bolsa 500g").
				Value(&v.empaque),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *pedidoWizard) formDetalle() *huh.Form {
	v.presentacion = ""
	v.variedad = ""
	v.kilos = ""
	v.otraLinea = false
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Línea %d · Presentación", len(v.detalles)+1)).
				Placeholder("CPS").
				Validate(validateRequerido).
				Value(&v.presentacion),
			huh.NewInput().
				Title("Variedad").
				Placeholder("castillo").
				Value(&v.variedad),
			huh.NewInput().
				Title("Kilos").
				Placeholder("50").
				Validate(validateKilos).
				Value(&v.kilos),
			huh.NewConfirm().
				Title("¿Agregar otra línea?").
				Affirmative("Sí").
				Negative("No").
				Value(&v.otraLinea),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *pedidoWizard) formReintento() *huh.Form {
	v.reintentar = true
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("¿Reintentar el envío?").
				Affirmative("Sí").
				Negative("No").
				Value(&v.reintentar),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *pedidoWizard) enviar() tea.Cmd {
	state := v.state
	clienteID, _ := strconv.Atoi(v.clienteID)
	nuevo := domain.NuevoPedido{
		ClienteID:    clienteID,
		FechaEntrega: v.fecha,
		Empaque:      v.empaque,
		Detalles:     v.detalles,
	}
	return func() tea.Msg {
		return pedidoCreadoMsg{err: state.CrearPedido(context.Background(), nuevo)}
	}
}

func (v *pedidoWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientesParaPedidoMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		if len(msg.clientes) == 0 {
			return v, tea.Batch(
				showToast(toastError, "registra un cliente antes de crear pedidos"),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		v.fase = 1
		v.form = v.formCabecera(msg.clientes)
		return v, v.form.Init()

	case pedidoCreadoMsg:
		if msg.err != nil {
			// The collected payload stays intact; the user decides whether
			// to resubmit it as-is or abandon.
			v.errMsg = api.MensajeUsuario(msg.err)
			v.fase = 4
			v.form = v.formReintento()
			return v, v.form.Init()
		}
		return v, tea.Batch(
			showToast(toastOK, "pedido registrado"),
			func() tea.Msg { return wizardCompleteMsg{} },
		)

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && v.fase != 3 {
			return v, func() tea.Msg { return wizardCompleteMsg{} }
		}
	}

	if v.form == nil || v.fase == 3 {
		return v, nil
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	if v.form.State == huh.StateCompleted {
		switch v.fase {
		case 1:
			v.fase = 2
			v.form = v.formDetalle()
			return v, tea.Batch(cmd, v.form.Init())
		case 2:
			v.detalles = append(v.detalles, domain.DetallePedido{
				Presentacion: v.presentacion,
				Variedad:     v.variedad,
				Kilos:        parseKilos(v.kilos),
			})
			if v.otraLinea {
				v.form = v.formDetalle()
				return v, tea.Batch(cmd, v.form.Init())
			}
			v.fase = 3
			return v, tea.Batch(cmd, v.enviar())
		case 4:
			if v.reintentar {
				v.errMsg = ""
				v.fase = 3
				return v, tea.Batch(cmd, v.enviar())
			}
			return v, func() tea.Msg { return wizardCompleteMsg{} }
		}
	}

	return v, cmd
}

func (v *pedidoWizard) View() string {
	out := "\n" + formatter.Header("Nuevo pedido") + "\n\n"
	switch v.fase {
	case 0:
		return out + "  " + formatter.Dim("Cargando clientes...") + "\n"
	case 3:
		return out + "  " + formatter.Dim("Registrando pedido...") + "\n"
	}
	if len(v.detalles) > 0 {
		out += "  " + formatter.Dim(fmt.Sprintf("%d línea(s) agregada(s)", len(v.detalles))) + "\n\n"
	}
	out += v.form.View()
	if v.errMsg != "" {
		out += "\n  " + formatter.StyleRed.Render("✘ "+v.errMsg) + "\n"
	}
	return out
}
