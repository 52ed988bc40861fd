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

type datosIniciarMsg struct {
	pedidos  []domain.Pedido
	maquinas []domain.Maquina
	err      error
}

type etapaMutadaMsg struct {
	verbo string
	err   error
}

// iniciarEtapaWizard opens a new batch in a process: pick the order, record
// the intake weight and optionally assign a machine.
type iniciarEtapaWizard struct {
	state *SharedState
	cfg   etapaConfig
	form  *huh.Form

	cargando bool
	enviando bool

	pedidoID  string
	kilos     string
	maquinaID string
	fecha     string
}

func newIniciarEtapaWizard(state *SharedState, cfg etapaConfig) *iniciarEtapaWizard {
	return &iniciarEtapaWizard{state: state, cfg: cfg, cargando: true}
}

func (v *iniciarEtapaWizard) ID() ViewID    { return ViewForm }
func (v *iniciarEtapaWizard) Title() string { return "Iniciar " + v.cfg.recurso }

func (v *iniciarEtapaWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "siguiente")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *iniciarEtapaWizard) Init() tea.Cmd {
	state := v.state
	return func() tea.Msg {
		ctx := context.Background()
		pedidos, err := state.Pedidos(ctx, api.FiltroPedidos{})
		if err != nil {
			return datosIniciarMsg{err: err}
		}
		maquinas, err := state.Maquinas(ctx)
		if err != nil {
			return datosIniciarMsg{err: err}
		}
		return datosIniciarMsg{pedidos: pedidos, maquinas: maquinas}
	}
}

func (v *iniciarEtapaWizard) buildForm(pedidos []domain.Pedido, maquinas []domain.Maquina) *huh.Form {
	pedidoOpts := make([]huh.Option[string], 0, len(pedidos))
	for i := range pedidos {
		p := &pedidos[i]
		if p.Estado == domain.EstadoEntregado {
			continue
		}
		label := fmt.Sprintf("%s · %s", p.Codigo, formatter.Kilos(p.PesoTotal()))
		pedidoOpts = append(pedidoOpts, huh.NewOption(label, strconv.Itoa(p.ID)))
	}

	// Only machines assigned to this process and in service are offered.
	maquinaOpts := []huh.Option[string]{huh.NewOption("Sin máquina", "")}
	for _, m := range maquinas {
		if m.Proceso == v.cfg.proceso && m.Estado == domain.MaquinaActiva {
			maquinaOpts = append(maquinaOpts, huh.NewOption(m.Nombre, strconv.Itoa(m.ID)))
		}
	}

	v.fecha = hoy()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Pedido").
				Options(pedidoOpts...).
				Value(&v.pedidoID),
			huh.NewInput().
				Title(v.cfg.entradaLabel).
				Placeholder("120").
				Validate(validateKilos).
				Value(&v.kilos),
			huh.NewSelect[string]().
				Title("Máquina").
				Options(maquinaOpts...).
				Value(&v.maquinaID),
			huh.NewInput().
				Title("Fecha de ingreso").
				Validate(validateFecha).
				Value(&v.fecha),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
}

func (v *iniciarEtapaWizard) enviar() tea.Cmd {
	client := v.state.API
	cache := v.state.Cache
	cfg := v.cfg
	pedidoID, _ := strconv.Atoi(v.pedidoID)
	intake := domain.IniciarEtapa{
		PedidoID:     pedidoID,
		KilosEntrada: parseKilos(v.kilos),
		FechaIngreso: v.fecha,
	}
	if v.maquinaID != "" {
		id, _ := strconv.Atoi(v.maquinaID)
		intake.MaquinaID = &id
	}
	return func() tea.Msg {
		err := cache.Mutate(context.Background(), cfg.recurso, func(ctx context.Context) error {
			return cfg.iniciar(ctx, client, intake)
		})
		return etapaMutadaMsg{verbo: "iniciado", err: err}
	}
}

func (v *iniciarEtapaWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case datosIniciarMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		v.cargando = false
		v.form = v.buildForm(msg.pedidos, msg.maquinas)
		return v, v.form.Init()

	case etapaMutadaMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		return v, tea.Batch(
			showToast(toastOK, "lote "+msg.verbo),
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

func (v *iniciarEtapaWizard) View() string {
	out := "\n" + formatter.Header("Iniciar "+v.cfg.titulo) + "\n\n"
	if v.cargando {
		return out + "  " + formatter.Dim("Cargando pedidos y máquinas...") + "\n"
	}
	if v.enviando {
		return out + "  " + formatter.Dim("Registrando ingreso...") + "\n"
	}
	return out + v.form.View()
}

// finalizarEtapaWizard closes a batch: the output weight is validated
// against the recorded intake before anything leaves the terminal, and the
// resulting loss is shown next to the field.
type finalizarEtapaWizard struct {
	state *SharedState
	cfg   etapaConfig
	fila  etapaFila
	form  *huh.Form

	enviando bool

	salida      string
	observacion string
}

func newFinalizarEtapaWizard(state *SharedState, cfg etapaConfig, fila etapaFila) *finalizarEtapaWizard {
	v := &finalizarEtapaWizard{state: state, cfg: cfg, fila: fila}
	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(cfg.salidaLabel).
				Placeholder(fmt.Sprintf("%.1f", fila.entrada)).
				Validate(validateSalidaMaxima(fila.entrada)).
				Value(&v.salida),
			huh.NewInput().
				Title("Observación").
				Value(&v.observacion),
		),
	).WithTheme(pipeHuhTheme()).WithShowHelp(false)
	return v
}

func (v *finalizarEtapaWizard) ID() ViewID    { return ViewForm }
func (v *finalizarEtapaWizard) Title() string { return "Finalizar " + v.cfg.recurso }

func (v *finalizarEtapaWizard) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "finalizar")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *finalizarEtapaWizard) Init() tea.Cmd {
	return v.form.Init()
}

func (v *finalizarEtapaWizard) enviar() tea.Cmd {
	client := v.state.API
	cache := v.state.Cache
	cfg := v.cfg
	id := v.fila.id
	fin := domain.FinalizarEtapa{
		KilosSalida: parseKilos(v.salida),
		Observacion: v.observacion,
	}
	return func() tea.Msg {
		err := cache.Mutate(context.Background(), cfg.recurso, func(ctx context.Context) error {
			return cfg.finalizar(ctx, client, id, fin)
		})
		return etapaMutadaMsg{verbo: "finalizado", err: err}
	}
}

func (v *finalizarEtapaWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case etapaMutadaMsg:
		if msg.err != nil {
			return v, tea.Batch(
				showToast(toastError, api.MensajeUsuario(msg.err)),
				func() tea.Msg { return wizardCompleteMsg{} },
			)
		}
		return v, tea.Batch(
			showToast(toastOK, "lote "+msg.verbo),
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

func (v *finalizarEtapaWizard) View() string {
	out := "\n" + formatter.Header("Finalizar "+v.cfg.titulo) + "\n\n"
	out += fmt.Sprintf("  Pedido %s · %s: %s\n",
		formatter.StyleGreen.Render(v.fila.pedido),
		v.cfg.entradaLabel,
		formatter.Kilos(v.fila.entrada))

	if salida := parseKilos(v.salida); salida > 0 && salida <= v.fila.entrada {
		out += "  Merma resultante: " + formatter.MermaPct(domain.Merma(v.fila.entrada, salida)) + "\n"
	}
	out += "\n"

	if v.enviando {
		return out + "  " + formatter.Dim("Registrando salida...") + "\n"
	}
	return out + v.form.View()
}
