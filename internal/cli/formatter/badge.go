package formatter

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

// EstadoBadge returns the colored pill for an order's lifecycle state.
// Colors follow the pipeline: registered dim, physical stages yellow/blue,
// billing purple, ready green, delivered dim-green.
func EstadoBadge(e domain.EstadoPedido) string {
	label := "● " + e.Etiqueta()
	switch e {
	case domain.EstadoRegistrado:
		return StyleDim.Render(label)
	case domain.EstadoTrillado, domain.EstadoMaquila:
		return StyleYellow.Render(label)
	case domain.EstadoTostion:
		return StyleRed.Render(label)
	case domain.EstadoProduccion:
		return StyleBlue.Render(label)
	case domain.EstadoFacturacion:
		return StylePurple.Render(label)
	case domain.EstadoListoParaEntrega:
		return StyleGreen.Render(label)
	case domain.EstadoEntregado:
		return StyleGreen.Render("✓ " + e.Etiqueta())
	default:
		return StyleDim.Render(label)
	}
}

// MaquinaBadge returns the colored pill for a machine's operational state.
func MaquinaBadge(e domain.EstadoMaquina) string {
	switch e {
	case domain.MaquinaActiva:
		return StyleGreen.Render("● Activa")
	case domain.MaquinaMantenimiento:
		return StyleYellow.Render("● Mantenimiento")
	case domain.MaquinaFueraDeServicio:
		return StyleRed.Render("● Fuera de servicio")
	default:
		return StyleDim.Render("● " + string(e))
	}
}

// ActivoBadge renders the active/inactive flag used by users and schedules.
func ActivoBadge(activo bool) string {
	if activo {
		return StyleGreen.Render("activo")
	}
	return StyleDim.Render("inactivo")
}

// Kilos formats a weight with unit, trimming trailing decimal noise.
func Kilos(k float64) string {
	if k == float64(int64(k)) {
		return fmt.Sprintf("%d kg", int64(k))
	}
	return fmt.Sprintf("%.1f kg", k)
}

// MermaPct formats a shrinkage percentage with urgency coloring: losses
// beyond 25% are unusual enough to highlight.
func MermaPct(pct float64) string {
	text := fmt.Sprintf("%.1f%%", pct)
	switch {
	case pct > 25:
		return StyleRed.Render(text)
	case pct > 20:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(title) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}
