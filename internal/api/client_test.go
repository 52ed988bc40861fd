package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenbetancur/pipe-app/internal/domain"
	"github.com/stevenbetancur/pipe-app/internal/session"
)

// fakeTokens is a minimal TokenSource for transport tests.
type fakeTokens struct {
	token   string
	cleared atomic.Bool
}

func (f *fakeTokens) Token() string { return f.token }
func (f *fakeTokens) Clear() error  { f.cleared.Store(true); f.token = ""; return nil }

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, tokens), srv
}

func TestClient_AdjuntaBearerCuandoHayToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}), &fakeTokens{token: "tok-9"})

	_, err := c.ListPedidos(context.Background(), FiltroPedidos{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", gotAuth)
}

func TestClient_SesionCorruptaNoAdjuntaHeader(t *testing.T) {
	// A corrupt persisted session hydrates to "no token"; the request goes
	// out without Authorization and without surfacing a parse error.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("%%%"), 0o600))
	store := session.NewStore(dir)

	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}), store)

	_, err := c.ListPedidos(context.Background(), FiltroPedidos{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_401LimpiaSesionYDispara(t *testing.T) {
	tokens := &fakeTokens{token: "viejo"}
	expired := false

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), tokens)
	c.OnSessionExpired(func() { expired = true })

	_, err := c.ListPedidos(context.Background(), FiltroPedidos{})
	assert.ErrorIs(t, err, ErrSesionExpirada)
	assert.True(t, tokens.cleared.Load())
	assert.True(t, expired)
}

func TestClient_LoginRechazadoNoExpiraSesion(t *testing.T) {
	// Bad credentials come back as 401 from /auth/login; that is a normal
	// rejection, not an expired session, so nothing gets cleared.
	tokens := &fakeTokens{token: "vigente"}
	expired := false

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"mensaje":"credenciales inválidas"}`))
	}), tokens)
	c.OnSessionExpired(func() { expired = true })

	_, err := c.Login(context.Background(), Credenciales{Email: "ana@finca.co", Password: "mala"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "credenciales inválidas", apiErr.Mensaje)
	assert.NotErrorIs(t, err, ErrSesionExpirada)
	assert.False(t, tokens.cleared.Load())
	assert.False(t, expired)
}

func TestClient_GetReintentaUnaVez(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			// Kill the connection mid-request to simulate a network error.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"codigo":"PED-001","estado":"REGISTRADO"}]`))
	})
	c, _ := newTestClient(t, handler, &fakeTokens{})

	pedidos, err := c.ListPedidos(context.Background(), FiltroPedidos{})
	require.NoError(t, err)
	require.Len(t, pedidos, 1)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_MutacionNoSeReintenta(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	})
	c, _ := newTestClient(t, handler, &fakeTokens{})

	_, err := c.CreatePedido(context.Background(), domain.NuevoPedido{ClienteID: 1})
	assert.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_CreatePedidoEnviaDetallesAnidados(t *testing.T) {
	var hits atomic.Int32
	var gotPath, gotRequestID string
	var gotBody map[string]any

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotPath = r.Method + " " + r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"id":10,"codigo":"PED-010","estado":"REGISTRADO"}`))
	})
	c, _ := newTestClient(t, handler, &fakeTokens{token: "t"})

	p, err := c.CreatePedido(context.Background(), domain.NuevoPedido{
		ClienteID:    3,
		FechaEntrega: "2026-03-10",
		Detalles:     []domain.DetallePedido{{Presentacion: "CPS", Kilos: 50}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, p.ID)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "POST /pedidos", gotPath)
	assert.NotEmpty(t, gotRequestID)
	assert.EqualValues(t, 3, gotBody["clienteId"])
	assert.Equal(t, "2026-03-10", gotBody["fechaEntrega"])

	detalles, ok := gotBody["detalles"].([]any)
	require.True(t, ok, "detalles must travel nested in the same POST")
	require.Len(t, detalles, 1)
	detalle := detalles[0].(map[string]any)
	assert.Equal(t, "CPS", detalle["presentacion"])
	assert.EqualValues(t, 50, detalle["kilos"])
}

func TestClient_RechazoDeNegocioConservaMensaje(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"mensaje":"el pedido no está en etapa de tostión"}`))
	}), &fakeTokens{})

	err := c.FinalizarTostion(context.Background(), 4, domain.FinalizarEtapa{KilosSalida: 10})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "el pedido no está en etapa de tostión", apiErr.Mensaje)
	assert.Equal(t, "el pedido no está en etapa de tostión", MensajeUsuario(err))
}

func TestClient_TimeoutSeReportaComoTal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 50*time.Millisecond, &fakeTokens{})
	_, err := c.ListCiudades(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_FiltroPedidosEnQuery(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("[]"))
	}), &fakeTokens{})

	_, err := c.ListPedidos(context.Background(), FiltroPedidos{Estado: domain.EstadoTostion, Buscar: "finca"})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "estado=TOSTION")
	assert.Contains(t, gotQuery, "buscar=finca")
}
