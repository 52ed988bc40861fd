package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/stevenbetancur/pipe-app/internal/live"
	"github.com/stevenbetancur/pipe-app/internal/query"
)

// NewRootCmd creates the top-level "pipeapp" command. Running it without
// arguments starts the full-screen TUI.
func NewRootCmd(state *SharedState, version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "pipeapp",
		Short:   "Gestión de pedidos y planta de café desde la terminal",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunTUI(state)
		},
	}
	return root
}

// RunTUI starts the bubbletea program. It refuses to run without a real
// terminal on stdin.
func RunTUI(state *SharedState) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("pipeapp necesita una terminal interactiva")
	}

	p := tea.NewProgram(newAppModel(state), tea.WithAltScreen())

	// A 401 anywhere drops the app back to the login screen.
	state.API.OnSessionExpired(func() {
		p.Send(sesionExpiradaMsg{})
	})

	// Change notifications from the backend invalidate the cache and nudge
	// every view to reload.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if state.Cfg.WSURL != "" {
		sub := live.NewSubscriber(state.Cfg.WSURL, liveInvalidator{cache: state.Cache, p: p})
		go sub.Run(ctx)
	}

	_, err := p.Run()
	return err
}

// liveInvalidator bridges websocket events into the running program.
type liveInvalidator struct {
	cache *query.Cache
	p     *tea.Program
}

func (l liveInvalidator) Invalidate(recursos ...string) {
	l.cache.Invalidate(recursos...)
	l.p.Send(refreshViewMsg{})
}
