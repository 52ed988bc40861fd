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

type usuariosLoadedMsg struct {
	usuarios []domain.Usuario
	err      error
}

// usuariosView is the staff account list, admin only.
type usuariosView struct {
	state    *SharedState
	usuarios []domain.Usuario
	cursor   int
	loading  bool
	err      error
}

func newUsuariosView(state *SharedState) *usuariosView {
	return &usuariosView{state: state, loading: true}
}

func (v *usuariosView) ID() ViewID    { return ViewUsuarios }
func (v *usuariosView) Title() string { return "Usuarios" }

func (v *usuariosView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nuevo")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refrescar")),
	}
}

func (v *usuariosView) Init() tea.Cmd {
	return v.load()
}

func (v *usuariosView) load() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		usuarios, err := state.Usuarios(context.Background())
		return usuariosLoadedMsg{usuarios: usuarios, err: err}
	}
}

func (v *usuariosView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case usuariosLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.usuarios = msg.usuarios
			if v.cursor >= len(v.usuarios) {
				v.cursor = max(len(v.usuarios)-1, 0)
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
			if v.cursor < len(v.usuarios)-1 {
				v.cursor++
			}
		case "n":
			return v, pushView(newUsuarioWizard(v.state, nil))
		case "e":
			if v.cursor < len(v.usuarios) {
				return v, pushView(newUsuarioWizard(v.state, &v.usuarios[v.cursor]))
			}
		case "r":
			v.state.Cache.Invalidate("usuarios")
			v.loading = true
			return v, v.load()
		}
	}
	return v, nil
}

func (v *usuariosView) View() string {
	var b strings.Builder
	b.WriteString("\n" + formatter.Header("Usuarios") + "\n\n")

	headers := []string{"NOMBRE", "CORREO", "ROL", "ACTIVO"}
	if v.loading {
		b.WriteString(indent(formatter.RenderSkeleton(headers, 4)))
		return b.String()
	}
	if v.err != nil {
		b.WriteString("  " + formatter.StyleRed.Render("✘ "+api.MensajeUsuario(v.err)) + "\n")
		return b.String()
	}
	if len(v.usuarios) == 0 {
		b.WriteString("  " + formatter.Dim("No hay usuarios registrados.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(v.usuarios))
	for i := range v.usuarios {
		u := &v.usuarios[i]
		cursor := " "
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸")
		}
		rows = append(rows, []string{
			cursor + " " + u.Nombre,
			u.Email,
			u.Rol.Etiqueta(),
			formatter.ActivoBadge(u.Activo),
		})
	}
	b.WriteString(indent(formatter.RenderTable(headers, rows)))
	return b.String()
}

type usuarioGuardadoMsg struct {
	err error
}

// usuarioWizard creates or edits a staff account. The password field only
// appears on create; the backend never returns it.
type usuarioWizard struct {
	state    *SharedState
	editando *domain.Usuario
	form     *huh.Form

	enviando bool

	nombre   string
	email    string
	password string
	rol      string
	activo   bool
}

func newUsuarioWizard(state *SharedState, editando *domain.Usuario) *usuarioWizard {
	v := &usuarioWizard{state: state, editando: editando, rol: string(domain.RolOperario), activo: true}
	if editando != nil {
		v.nombre = editando.Nombre
		v.email = editando.Email
		v.rol = string(editando.Rol)
		v.activo = editando.Activo
	}
	v.form = v.buildForm()
	return v
}

func (v *usuarioWizard) ID() ViewID { return ViewForm }

func (v *usuarioWizard) Title() string {
	if v.editando != nil {
		return "Editar usuario"
	}
	return "Nuevo usuario"
}

func (v *usuarioWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "siguiente")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *usuarioWizard) buildForm() *huh.Form {
	campos := []huh.Field{
		huh.NewInput().
			Title("Nombre").
			Validate(validateRequerido).
			Value(&v.nombre),
		huh.NewInput().
			Title("Correo").
			Validate(validateEmail).
			Value(&v.email),
	}
	if v.editando == nil {
		campos = append(campos, huh.NewInput().
			Title("Contraseña").
			EchoMode(huh.EchoModePassword).
			Validate(validateRequerido).
			Value(&v.password))
	}
	campos = append(campos,
		huh.NewSelect[string]().
			Title("Rol").
			Options(
				huh.NewOption(domain.RolAdmin.Etiqueta(), string(domain.RolAdmin)),
				huh.NewOption(domain.RolOperario.Etiqueta(), string(domain.RolOperario)),
				huh.NewOption(domain.RolFacturacion.Etiqueta(), string(domain.RolFacturacion)),
			).
			Value(&v.rol),
		huh.NewConfirm().
			Title("¿Cuenta activa?").
			Affirmative("Sí").
			Negative("No").
			Value(&v.activo),
	)
	return huh.NewForm(huh.NewGroup(campos...)).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *usuarioWizard) Init() tea.Cmd {
	return v.form.Init()
}

func (v *usuarioWizard) enviar() tea.Cmd {
	state := v.state
	editando := v.editando
	datos := domain.NuevoUsuario{
		Nombre:   v.nombre,
		Email:    v.email,
		Password: v.password,
		Rol:      domain.Rol(v.rol),
		Activo:   v.activo,
	}
	return func() tea.Msg {
		err := state.Mutar(context.Background(), "usuarios", func(ctx context.Context) error {
			if editando != nil {
				_, err := state.API.UpdateUsuario(ctx, editando.ID, datos)
				return err
			}
			_, err := state.API.CreateUsuario(ctx, datos)
			return err
		})
		return usuarioGuardadoMsg{err: err}
	}
}

func (v *usuarioWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case usuarioGuardadoMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		return v, tea.Batch(
			showToast(toastOK, "usuario guardado"),
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

func (v *usuarioWizard) View() string {
	out := "\n" + formatter.Header(v.Title()) + "\n\n"
	if v.enviando {
		return out + "  " + formatter.Dim("Guardando usuario...") + "\n"
	}
	return out + v.form.View()
}
