package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
	"github.com/stevenbetancur/pipe-app/internal/domain"
)

type clientesLoadedMsg struct {
	clientes []domain.Cliente
	err      error
}

// clientesView is the client directory with free-text search.
type clientesView struct {
	state    *SharedState
	clientes []domain.Cliente
	cursor   int
	loading  bool
	err      error

	buscando bool
	buscar   string
}

func newClientesView(state *SharedState) *clientesView {
	return &clientesView{state: state, loading: true}
}

func (v *clientesView) ID() ViewID    { return ViewClientes }
func (v *clientesView) Title() string { return "Clientes" }

func (v *clientesView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nuevo")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
	}
}

func (v *clientesView) Init() tea.Cmd {
	return v.load()
}

func (v *clientesView) load() tea.Cmd {
	state := v.state
	buscar := v.buscar
	return func() tea.Msg {
		clientes, err := state.Clientes(context.Background(), buscar)
		return clientesLoadedMsg{clientes: clientes, err: err}
	}
}

func (v *clientesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientesLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.clientes = msg.clientes
			if v.cursor >= len(v.clientes) {
				v.cursor = max(len(v.clientes)-1, 0)
			}
		}
		return v, nil

	case refreshViewMsg:
		return v, v.load()

	case tea.KeyMsg:
		if v.buscando {
			return v.updateBusqueda(msg)
		}
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.clientes)-1 {
				v.cursor++
			}
		case "n":
			return v, pushView(newClienteWizard(v.state, nil))
		case "e":
			if v.cursor < len(v.clientes) {
				return v, pushView(newClienteWizard(v.state, &v.clientes[v.cursor]))
			}
		case "/":
			v.buscando = true
			v.buscar = ""
		case "r":
			v.state.Cache.Invalidate("clientes")
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

func (v *clientesView) updateBusqueda(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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

func (v *clientesView) View() string {
	var b strings.Builder
	b.WriteString("\n" + formatter.Header("Clientes") + "\n\n")

	if v.buscando {
		b.WriteString("  " + formatter.StyleYellow.Render("/") + " " + v.buscar + "█\n\n")
	}

	headers := []string{"NOMBRE", "DOCUMENTO", "TELÉFONO", "CIUDAD"}
	if v.loading {
		b.WriteString(indent(formatter.RenderSkeleton(headers, 4)))
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n")
		return b.String()
	}
	if len(v.clientes) == 0 {
		b.WriteString("  " + formatter.Dim("No hay clientes registrados.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(v.clientes))
	for i := range v.clientes {
		c := &v.clientes[i]
		cursor := " "
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸")
		}
		ciudad := formatter.Dim("—")
		if c.Ciudad != nil {
			ciudad = c.Ciudad.Nombre
		}
		rows = append(rows, []string{
			cursor + " " + c.Nombre,
			c.Documento,
			c.Telefono,
			ciudad,
		})
	}
	b.WriteString(indent(formatter.RenderTable(headers, rows)))
	return b.String()
}

type ciudadesParaClienteMsg struct {
	ciudades []domain.Ciudad
	cliente  *domain.Cliente // fresh record when editing
	err      error
}

type clienteGuardadoMsg struct {
	err error
}

// clienteWizard creates or edits a client. Editing pre-fills the fields and
// sends a PUT instead of a POST.
type clienteWizard struct {
	state    *SharedState
	editando *domain.Cliente
	form     *huh.Form

	cargando bool
	enviando bool

	nombre    string
	documento string
	telefono  string
	email     string
	direccion string
	ciudadID  string
}

func newClienteWizard(state *SharedState, editando *domain.Cliente) *clienteWizard {
	v := &clienteWizard{state: state, editando: editando, cargando: true}
	if editando != nil {
		v.prellenar(editando)
	}
	return v
}

func (v *clienteWizard) prellenar(c *domain.Cliente) {
	v.nombre = c.Nombre
	v.documento = c.Documento
	v.telefono = c.Telefono
	v.email = c.Email
	v.direccion = c.Direccion
	v.ciudadID = ""
	if c.CiudadID != nil {
		v.ciudadID = strconv.Itoa(*c.CiudadID)
	}
}

func (v *clienteWizard) ID() ViewID { return ViewForm }

func (v *clienteWizard) Title() string {
	if v.editando != nil {
		return "Editar cliente"
	}
	return "Nuevo cliente"
}

func (v *clienteWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "siguiente")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *clienteWizard) Init() tea.Cmd {
	state := v.state
	editando := v.editando
	return func() tea.Msg {
		ctx := context.Background()
		ciudades, err := state.Ciudades(ctx)
		msg := ciudadesParaClienteMsg{ciudades: ciudades, err: err}
		if err == nil && editando != nil {
			// Refetch the record by id so the form edits the backend's
			// current values, not a possibly stale cached row.
			msg.cliente, msg.err = state.API.GetCliente(ctx, editando.ID)
		}
		return msg
	}
}

func validateEmailOpcional(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateEmail(s)
}

func (v *clienteWizard) buildForm(ciudades []domain.Ciudad) *huh.Form {
	opts := []huh.Option[string]{huh.NewOption("Sin ciudad", "")}
	for _, c := range ciudades {
		opts = append(opts, huh.NewOption(c.Nombre, strconv.Itoa(c.ID)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nombre").
				Validate(validateRequerido).
				Value(&v.nombre),
			huh.NewInput().
				Title("Documento").
				Value(&v.documento),
			huh.NewInput().
				Title("Teléfono").
				Value(&v.telefono),
			huh.NewInput().
				Title("Correo").
				Validate(validateEmailOpcional).
				Value(&v.email),
			huh.NewInput().
				Title("Dirección").
				Value(&v.direccion),
			huh.NewSelect[string]().
				Title("Ciudad").
				Options(opts...).
				Value(&v.ciudadID),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *clienteWizard) enviar() tea.Cmd {
	state := v.state
	editando := v.editando
	datos := domain.NuevoCliente{
		Nombre:    v.nombre,
		Documento: v.documento,
		Telefono:  v.telefono,
		Email:     v.email,
		Direccion: v.direccion,
	}
	if v.ciudadID != "" {
		id, _ := strconv.Atoi(v.ciudadID)
		datos.CiudadID = &id
	}
	return func() tea.Msg {
		err := state.Mutar(context.Background(), "clientes", func(ctx context.Context) error {
			if editando != nil {
				_, err := state.API.UpdateCliente(ctx, editando.ID, datos)
				return err
			}
			_, err := state.API.CreateCliente(ctx, datos)
			return err
		})
		return clienteGuardadoMsg{err: err}
	}
}

func (v *clienteWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ciudadesParaClienteMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		if msg.cliente != nil {
			v.editando = msg.cliente
			v.prellenar(msg.cliente)
		}
		v.cargando = false
		v.form = v.buildForm(msg.ciudades)
		return v, v.form.Init()

	case clienteGuardadoMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		return v, tea.Batch(
			showToast(toastOK, "cliente guardado"),
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

func (v *clienteWizard) View() string {
	out := "\n" + formatter.Header(v.Title()) + "\n\n"
	if v.cargando {
		return out + "  " + formatter.Dim("Cargando ciudades...") + "\n"
	}
	if v.enviando {
		return out + "  " + formatter.Dim("Guardando cliente...") + "\n"
	}
	return out + v.form.View()
}
