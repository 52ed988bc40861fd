package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
	"github.com/stevenbetancur/pipe-app/internal/domain"
)

type horariosLoadedMsg struct {
	horarios []domain.Horario
	err      error
}

// horariosView lists the work schedules with their weekly slots.
type horariosView struct {
	state    *SharedState
	horarios []domain.Horario
	cursor   int
	loading  bool
	err      error
}

func newHorariosView(state *SharedState) *horariosView {
	return &horariosView{state: state, loading: true}
}

func (v *horariosView) ID() ViewID    { return ViewHorarios }
func (v *horariosView) Title() string { return "Horarios" }

func (v *horariosView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nuevo")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refrescar")),
	}
}

func (v *horariosView) Init() tea.Cmd {
	return v.load()
}

func (v *horariosView) load() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		horarios, err := state.Horarios(context.Background())
		return horariosLoadedMsg{horarios: horarios, err: err}
	}
}

func (v *horariosView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case horariosLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.horarios = msg.horarios
			if v.cursor >= len(v.horarios) {
				v.cursor = max(len(v.horarios)-1, 0)
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
			if v.cursor < len(v.horarios)-1 {
				v.cursor++
			}
		case "n":
			return v, pushView(newHorarioWizard(v.state, nil))
		case "e":
			if v.cursor < len(v.horarios) {
				return v, pushView(newHorarioWizard(v.state, &v.horarios[v.cursor]))
			}
		case "r":
			v.state.Cache.Invalidate("horarios")
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

func (v *horariosView) View() string {
	var b strings.Builder
	b.WriteString("\n" + formatter.Header("Horarios") + "\n\n")

	if v.loading {
		b.WriteString("  " + formatter.Dim("Cargando horarios...") + "\n")
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n")
		return b.String()
	}
	if len(v.horarios) == 0 {
		b.WriteString("  " + formatter.Dim("No hay horarios registrados.") + "\n")
		return b.String()
	}

	for i := range v.horarios {
		h := &v.horarios[i]
		cursor := "  "
		nombre := h.Nombre
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			nombre = formatter.StyleBold.Render(nombre)
		}
		b.WriteString(fmt.Sprintf("  %s%s  %s\n", cursor, nombre, formatter.ActivoBadge(h.Activo)))
		for _, f := range h.Franjas {
			b.WriteString(fmt.Sprintf("      %s %s – %s\n",
				formatter.Dim(fmt.Sprintf("%-10s", f.Dia.Etiqueta())), f.HoraInicio, f.HoraFin))
		}
	}
	return b.String()
}

type horarioGuardadoMsg struct {
	err error
}

// horarioWizard creates or edits a schedule: a name, then one slot per pass
// until the user stops adding days. Editing keeps the existing slots unless
// the user chooses to redo them.
type horarioWizard struct {
	state    *SharedState
	editando *domain.Horario
	form     *huh.Form

	fase int // 0 nombre, 1 franja, 2 enviando

	nombre     string
	activo     bool
	rehacer    bool
	dia        string
	horaInicio string
	horaFin    string
	otraFranja bool

	franjas []domain.Franja
}

func newHorarioWizard(state *SharedState, editando *domain.Horario) *horarioWizard {
	v := &horarioWizard{state: state, editando: editando, activo: true}
	campos := []huh.Field{
		huh.NewInput().
			Title("Nombre del horario").
			Placeholder("turno mañana").
			Validate(validateRequerido).
			Value(&v.nombre),
		huh.NewConfirm().
			Title("¿Horario activo?").
			Affirmative("Sí").
			Negative("No").
			Value(&v.activo),
	}
	if editando != nil {
		v.nombre = editando.Nombre
		v.activo = editando.Activo
		v.franjas = append(v.franjas, editando.Franjas...)
		campos = append(campos, huh.NewConfirm().
			Title("¿Rehacer las franjas?").
			Affirmative("Sí").
			Negative("No").
			Value(&v.rehacer))
	}
	v.form = huh.NewForm(huh.NewGroup(campos...)).
		WithTheme(pipeHuhTheme()).WithShowHelp(false)
	return v
}

func (v *horarioWizard) ID() ViewID { return ViewForm }

func (v *horarioWizard) Title() string {
	if v.editando != nil {
		return "Editar horario"
	}
	return "Nuevo horario"
}

func (v *horarioWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "siguiente")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *horarioWizard) Init() tea.Cmd {
	return v.form.Init()
}

func (v *horarioWizard) formFranja() *huh.Form {
	v.dia = string(domain.Lunes)
	v.horaInicio = ""
	v.horaFin = ""
	v.otraFranja = false
	dias := []domain.Dia{domain.Lunes, domain.Martes, domain.Miercoles, domain.Jueves, domain.Viernes, domain.Sabado, domain.Domingo}
	opts := make([]huh.Option[string], 0, len(dias))
	for _, d := range dias {
		opts = append(opts, huh.NewOption(d.Etiqueta(), string(d)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Franja %d · Día", len(v.franjas)+1)).
				Options(opts...).
				Value(&v.dia),
			huh.NewInput().
				Title("Hora inicio").
				Placeholder("07:00").
				Validate(validateHora).
				Value(&v.horaInicio),
			huh.NewInput().
				Title("Hora fin").
				Placeholder("16:00").
				Validate(validateHora).
				Value(&v.horaFin),
			huh.NewConfirm().
				Title("¿Agregar otra franja?").
				Affirmative("Sí").
				Negative("No").
				Value(&v.otraFranja),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *horarioWizard) enviar() tea.Cmd {
	state := v.state
	editando := v.editando
	datos := domain.NuevoHorario{
		Nombre:  v.nombre,
		Franjas: v.franjas,
		Activo:  v.activo,
	}
	return func() tea.Msg {
		err := state.Mutar(context.Background(), "horarios", func(ctx context.Context) error {
			if editando != nil {
				_, err := state.API.UpdateHorario(ctx, editando.ID, datos)
				return err
			}
			_, err := state.API.CreateHorario(ctx, datos)
			return err
		})
		return horarioGuardadoMsg{err: err}
	}
}

func (v *horarioWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case horarioGuardadoMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		return v, tea.Batch(
			showToast(toastOK, "horario guardado"),
			func() tea.Msg { return wizardCompleteMsg{} },
		)

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && v.fase != 2 {
			return v, func() tea.Msg { return wizardCompleteMsg{} }
		}
	}

	if v.fase == 2 {
		return v, nil
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	if v.form.State == huh.StateCompleted {
		switch v.fase {
		case 0:
			if v.editando != nil && !v.rehacer {
				// Name or active flag changed, slots kept as they are.
				v.fase = 2
				return v, tea.Batch(cmd, v.enviar())
			}
			if v.rehacer {
				v.franjas = nil
			}
			v.fase = 1
			v.form = v.formFranja()
			return v, tea.Batch(cmd, v.form.Init())
		case 1:
			v.franjas = append(v.franjas, domain.Franja{
				Dia:        domain.Dia(v.dia),
				HoraInicio: v.horaInicio,
				HoraFin:    v.horaFin,
			})
			if v.otraFranja {
				v.form = v.formFranja()
				return v, tea.Batch(cmd, v.form.Init())
			}
			v.fase = 2
			return v, tea.Batch(cmd, v.enviar())
		}
	}
	return v, cmd
}

func (v *horarioWizard) View() string {
	out := "\n" + formatter.Header(v.Title()) + "\n\n"
	if v.fase == 2 {
		return out + "  " + formatter.Dim("Guardando horario...") + "\n"
	}
	if len(v.franjas) > 0 {
		out += "  " + formatter.Dim(fmt.Sprintf("%d franja(s) agregada(s)", len(v.franjas))) + "\n\n"
	}
	return out + v.form.View()
}
