package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
	"github.com/stevenbetancur/pipe-app/internal/domain"
)

type maquinasLoadedMsg struct {
	maquinas []domain.Maquina
	err      error
}

// maquinasView lists the plant machines with their process and state.
type maquinasView struct {
	state    *SharedState
	maquinas []domain.Maquina
	cursor   int
	loading  bool
	err      error
}

func newMaquinasView(state *SharedState) *maquinasView {
	return &maquinasView{state: state, loading: true}
}

func (v *maquinasView) ID() ViewID    { return ViewMaquinas }
func (v *maquinasView) Title() string { return "Máquinas" }

func (v *maquinasView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nueva")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refrescar")),
	}
}

func (v *maquinasView) Init() tea.Cmd {
	return v.load()
}

func (v *maquinasView) load() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		maquinas, err := state.Maquinas(context.Background())
		return maquinasLoadedMsg{maquinas: maquinas, err: err}
	}
}

func (v *maquinasView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case maquinasLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.maquinas = msg.maquinas
			if v.cursor >= len(v.maquinas) {
				v.cursor = max(len(v.maquinas)-1, 0)
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
			if v.cursor < len(v.maquinas)-1 {
				v.cursor++
			}
		case "n":
			return v, pushView(newMaquinaWizard(v.state, nil))
		case "e":
			if v.cursor < len(v.maquinas) {
				return v, pushView(newMaquinaWizard(v.state, &v.maquinas[v.cursor]))
			}
		case "r":
			v.state.Cache.Invalidate("maquinas")
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

func (v *maquinasView) View() string {
	var b strings.Builder
	b.WriteString("\n" + formatter.Header("Máquinas") + "\n\n")

	headers := []string{"NOMBRE", "PROCESO", "ESTADO"}
	if v.loading {
		b.WriteString(indent(formatter.RenderSkeleton(headers, 3)))
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n")
		return b.String()
	}
	if len(v.maquinas) == 0 {
		b.WriteString("  " + formatter.Dim("No hay máquinas registradas.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(v.maquinas))
	for i := range v.maquinas {
		m := &v.maquinas[i]
		cursor := " "
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸")
		}
		rows = append(rows, []string{
			cursor + " " + m.Nombre,
			string(m.Proceso),
			formatter.MaquinaBadge(m.Estado),
		})
	}
	b.WriteString(indent(formatter.RenderTable(headers, rows)))
	return b.String()
}

type maquinaGuardadaMsg struct {
	err error
}

// maquinaWizard creates or edits a machine.
type maquinaWizard struct {
	state    *SharedState
	editando *domain.Maquina
	form     *huh.Form

	enviando bool

	nombre  string
	proceso string
	estado  string
}

func newMaquinaWizard(state *SharedState, editando *domain.Maquina) *maquinaWizard {
	v := &maquinaWizard{
		state:    state,
		editando: editando,
		proceso:  string(domain.ProcesoTrillado),
		estado:   string(domain.MaquinaActiva),
	}
	if editando != nil {
		v.nombre = editando.Nombre
		v.proceso = string(editando.Proceso)
		v.estado = string(editando.Estado)
	}
	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nombre").
				Validate(validateRequerido).
				Value(&v.nombre),
			huh.NewSelect[string]().
				Title("Proceso").
				Options(
					huh.NewOption("Trillado", string(domain.ProcesoTrillado)),
					huh.NewOption("Tostión", string(domain.ProcesoTostion)),
					huh.NewOption("Producción", string(domain.ProcesoProduccion)),
				).
				Value(&v.proceso),
			huh.NewSelect[string]().
				Title("Estado").
				Options(
					huh.NewOption(domain.MaquinaActiva.Etiqueta(), string(domain.MaquinaActiva)),
					huh.NewOption(domain.MaquinaMantenimiento.Etiqueta(), string(domain.MaquinaMantenimiento)),
					huh.NewOption(domain.MaquinaFueraDeServicio.Etiqueta(), string(domain.MaquinaFueraDeServicio)),
				).
				Value(&v.estado),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
	return v
}

func (v *maquinaWizard) ID() ViewID { return ViewForm }

func (v *maquinaWizard) Title() string {
	if v.editando != nil {
		return "Editar máquina"
	}
	return "Nueva máquina"
}

func (v *maquinaWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "siguiente")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *maquinaWizard) Init() tea.Cmd {
	return v.form.Init()
}

func (v *maquinaWizard) enviar() tea.Cmd {
	state := v.state
	editando := v.editando
	datos := domain.NuevaMaquina{
		Nombre:  v.nombre,
		Proceso: domain.Proceso(v.proceso),
		Estado:  domain.EstadoMaquina(v.estado),
	}
	return func() tea.Msg {
		err := state.Mutar(context.Background(), "maquinas", func(ctx context.Context) error {
			if editando != nil {
				_, err := state.API.UpdateMaquina(ctx, editando.ID, datos)
				return err
			}
			_, err := state.API.CreateMaquina(ctx, datos)
			return err
		})
		return maquinaGuardadaMsg{err: err}
	}
}

func (v *maquinaWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case maquinaGuardadaMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		return v, tea.Batch(
			showToast(toastOK, "máquina guardada"),
			func() tea.Msg { return wizardCompleteMsg{} },
		)

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return v, func() tea.Msg { return wizardCompleteMsg{} }
		}
	}

	if v.enviando {
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

func (v *maquinaWizard) View() string {
	out := "\n" + formatter.Header(v.Title()) + "\n\n"
	if v.enviando {
		return out + "  " + formatter.Dim("Guardando máquina...") + "\n"
	}
	return out + v.form.View()
}
