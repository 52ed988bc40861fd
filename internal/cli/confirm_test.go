package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teclaConfirm(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestConfirmResuelveConTeclas(t *testing.T) {
	casos := []struct {
		tecla     string
		respuesta bool
	}{
		{"s", true},
		{"y", true},
		{"n", false},
		{"esc", false},
	}
	for _, c := range casos {
		t.Run(c.tecla, func(t *testing.T) {
			var got *bool
			ctrl := &confirmController{}
			ctrl.Open(confirmRequestMsg{
				opts: confirmOptions{Titulo: "Entregar pedido"},
				onResult: func(ok bool) tea.Cmd {
					got = &ok
					return nil
				},
			})

			ctrl.HandleKey(teclaConfirm(c.tecla))

			require.NotNil(t, got)
			assert.Equal(t, c.respuesta, *got)
			assert.False(t, ctrl.Active(), "se cierra al resolver")
		})
	}
}

func TestConfirmEnterSigueAlCursor(t *testing.T) {
	var got *bool
	ctrl := &confirmController{}
	ctrl.Open(confirmRequestMsg{
		opts:     confirmOptions{Titulo: "Eliminar cliente"},
		onResult: func(ok bool) tea.Cmd { got = &ok; return nil },
	})

	// El cursor arranca en cancelar; tab lo mueve a confirmar.
	ctrl.HandleKey(teclaConfirm("tab"))
	ctrl.HandleKey(teclaConfirm("enter"))

	require.NotNil(t, got)
	assert.True(t, *got)
}

func TestConfirmSegundaSolicitudReemplaza(t *testing.T) {
	primera, segunda := false, false
	ctrl := &confirmController{}
	ctrl.Open(confirmRequestMsg{
		opts:     confirmOptions{Titulo: "Primera"},
		onResult: func(bool) tea.Cmd { primera = true; return nil },
	})
	ctrl.Open(confirmRequestMsg{
		opts:     confirmOptions{Titulo: "Segunda"},
		onResult: func(bool) tea.Cmd { segunda = true; return nil },
	})

	assert.Contains(t, ctrl.View(80), "Segunda", "el modal muestra la solicitud más reciente")

	ctrl.HandleKey(teclaConfirm("s"))

	assert.False(t, primera, "el callback reemplazado nunca corre")
	assert.True(t, segunda)
	assert.False(t, ctrl.Active())
}

func TestConfirmEtiquetasPorDefecto(t *testing.T) {
	ctrl := &confirmController{}
	ctrl.Open(confirmRequestMsg{opts: confirmOptions{Titulo: "Confirmar"}})

	vista := ctrl.View(80)
	assert.Contains(t, vista, "Sí")
	assert.Contains(t, vista, "No")
}

func TestConfirmSinPendienteIgnoraTeclas(t *testing.T) {
	ctrl := &confirmController{}
	assert.Nil(t, ctrl.HandleKey(teclaConfirm("s")))
	assert.Empty(t, ctrl.View(80))
}
