package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastManagerCapCincoMasRecientes(t *testing.T) {
	m := newToastManager()

	for i := 0; i < 8; i++ {
		m.Push(toastInfo, string(rune('a'+i)), 0)
	}

	require.Len(t, m.toasts, maxToastsVisible)
	assert.Equal(t, "d", m.toasts[0].texto, "los más antiguos se descartan")
	assert.Equal(t, "h", m.toasts[len(m.toasts)-1].texto)
}

func TestToastManagerPruneExpirados(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newToastManager()
	m.now = func() time.Time { return base }

	m.Push(toastOK, "guardado", 0) // expira a +4s
	m.Push(toastError, "persistente", 30*time.Second)

	m.now = func() time.Time { return base.Add(5 * time.Second) }
	assert.True(t, m.Prune(), "queda uno visible")
	require.Len(t, m.toasts, 1)
	assert.Equal(t, "persistente", m.toasts[0].texto)

	m.now = func() time.Time { return base.Add(time.Minute) }
	assert.False(t, m.Prune())
	assert.False(t, m.Active())
	assert.Empty(t, m.View())
}

func TestToastDuracionPorDefecto(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newToastManager()
	m.now = func() time.Time { return base }

	m.Push(toastInfo, "hola", 0)

	require.Len(t, m.toasts, 1)
	assert.Equal(t, base.Add(defaultToastDuration), m.toasts[0].expires)
	assert.NotEmpty(t, m.toasts[0].id)
}
