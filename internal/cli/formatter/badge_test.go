package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

func plain(s string) string {
	// Tests run without a TTY, so lipgloss may or may not emit ANSI codes;
	// compare on the visible text only.
	for strings.Contains(s, "\x1b[") {
		start := strings.Index(s, "\x1b[")
		end := strings.Index(s[start:], "m")
		if end < 0 {
			break
		}
		s = s[:start] + s[start+end+1:]
	}
	return s
}

func TestEstadoBadge_Etiquetas(t *testing.T) {
	assert.Equal(t, "● Registrado", plain(EstadoBadge(domain.EstadoRegistrado)))
	assert.Equal(t, "● Listo para entrega", plain(EstadoBadge(domain.EstadoListoParaEntrega)))
	assert.Equal(t, "✓ Entregado", plain(EstadoBadge(domain.EstadoEntregado)))
}

func TestKilos_Formato(t *testing.T) {
	assert.Equal(t, "50 kg", Kilos(50))
	assert.Equal(t, "42.5 kg", Kilos(42.5))
}

func TestMermaPct_Texto(t *testing.T) {
	assert.Equal(t, "18.0%", plain(MermaPct(18)))
	assert.Equal(t, "27.3%", plain(MermaPct(27.3)))
}

func TestRenderTable_Alineacion(t *testing.T) {
	out := RenderTable(
		[]string{"CÓDIGO", "CLIENTE"},
		[][]string{{"PED-001", "Café La Loma"}, {"PED-002", "Tostadores SAS"}},
	)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4) // header, separator, two rows
	assert.Contains(t, plain(lines[0]), "CÓDIGO")
	assert.Contains(t, plain(lines[2]), "PED-001")
}

func TestRenderSkeleton_FilasPedidas(t *testing.T) {
	out := RenderSkeleton([]string{"CÓDIGO", "ESTADO"}, 4)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.Contains(t, plain(out), "░")
}
