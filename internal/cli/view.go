package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID identifies each type of view in the TUI.
type ViewID int

const (
	ViewLogin ViewID = iota
	ViewDashboard
	ViewPedidos
	ViewPedidoDetalle
	ViewEtapa
	ViewFacturas
	ViewClientes
	ViewUsuarios
	ViewMaquinas
	ViewHorarios
	ViewForm
)

// View is the interface every page implements. It extends tea.Model with
// navigation and help metadata.
type View interface {
	tea.Model
	ID() ViewID
	ShortHelp() []key.Binding // key hints shown in the bottom bar
	Title() string            // breadcrumb segment for this view
}
