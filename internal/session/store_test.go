package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenbetancur/pipe-app/internal/domain"
)

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	assert.False(t, s.Autenticado())
	assert.Empty(t, s.Token())

	u := &domain.Usuario{ID: 7, Nombre: "Laura", Email: "laura@pipe.co", Rol: domain.RolAdmin, Activo: true}
	require.NoError(t, s.Set(u, "tok-123"))

	// A fresh store hydrates what the first one persisted.
	s2 := NewStore(dir)
	assert.True(t, s2.Autenticado())
	assert.Equal(t, "tok-123", s2.Token())
	require.NotNil(t, s2.Usuario())
	assert.Equal(t, "Laura", s2.Usuario().Nombre)
}

func TestStore_CorruptSessionFallsOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{not json"), 0o600))

	s := NewStore(dir)
	assert.False(t, s.Autenticado())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Usuario())
}

func TestStore_ClearDropsSessionOnDisk(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Set(&domain.Usuario{ID: 1, Nombre: "Ana"}, "tok"))
	require.NoError(t, s.Clear())

	s2 := NewStore(dir)
	assert.False(t, s2.Autenticado())
	assert.Empty(t, s2.Token())
}

func TestStore_TemaDefaultsAndPersists(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	assert.Equal(t, TemaOscuro, s.Tema())

	require.NoError(t, s.SetTema(TemaClaro))
	assert.Equal(t, TemaClaro, NewStore(dir).Tema())
}

func TestStore_TemaCorruptoUsaDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "theme.json"), []byte(`{"tema":"sepia"}`), 0o600))
	assert.Equal(t, TemaOscuro, NewStore(dir).Tema())
}
