package cli

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/cli/formatter"
)

// loginDoneMsg carries the authentication result.
type loginDoneMsg struct {
	resp *api.LoginRespuesta
	err  error
}

// loginView is the entry gate: a two-field form that exchanges credentials
// for a bearer token and persists the session before moving on.
type loginView struct {
	state *SharedState
	form  *huh.Form

	email    string
	password string

	submitting bool
	errMsg     string
}

func newLoginView(state *SharedState) *loginView {
	v := &loginView{state: state}
	v.form = v.buildForm()
	return v
}

func (v *loginView) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Correo").
				Placeholder("usuario@empresa.com").
				Validate(validateEmail).
				Value(&v.email),
			huh.NewInput().
				Title("Contraseña").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequerido).
				Value(&v.password),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *loginView) ID() ViewID    { return ViewLogin }
func (v *loginView) Title() string { return "" }

func (v *loginView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ingresar")),
		key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "salir")),
	}
}

func (v *loginView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *loginView) submit() tea.Cmd {
	client := v.state.API
	creds := api.Credenciales{Email: v.email, Password: v.password}
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), creds)
		return loginDoneMsg{resp: resp, err: err}
	}
}

func (v *loginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		v.submitting = false
		if msg.err != nil {
			v.errMsg = api.MensajeUsuario(msg.err)
			v.form = v.buildForm()
			return v, v.form.Init()
		}
		if err := v.state.Sesion.Set(msg.resp.Usuario, msg.resp.Token); err != nil {
			// The token stays usable in memory even if persistence failed.
			v.errMsg = "no se pudo guardar la sesión: " + err.Error()
		}
		return v, replaceView(newDashboardView(v.state))
	}

	if v.submitting {
		return v, nil
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	if v.form.State == huh.StateCompleted {
		v.submitting = true
		v.errMsg = ""
		return v, tea.Batch(cmd, v.submit())
	}

	return v, cmd
}

func (v *loginView) View() string {
	out := "\n" + formatter.Header("Iniciar sesión") + "\n\n"
	if v.submitting {
		return out + "  " + formatter.Dim("Verificando credenciales...") + "\n"
	}
	out += v.form.View()
	if v.errMsg != "" {
		out += "\n  " + formatter.StyleRed.Render("✘ "+v.errMsg) + "\n"
	}
	return out
}
