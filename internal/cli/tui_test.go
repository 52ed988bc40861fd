package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenbetancur/pipe-app/internal/api"
	"github.com/stevenbetancur/pipe-app/internal/config"
	"github.com/stevenbetancur/pipe-app/internal/domain"
	"github.com/stevenbetancur/pipe-app/internal/query"
	"github.com/stevenbetancur/pipe-app/internal/session"
	"github.com/stevenbetancur/pipe-app/internal/teatest"
)

// sinAnsi strips escape sequences so assertions compare visible text only.
func sinAnsi(s string) string {
	for strings.Contains(s, "\x1b[") {
		start := strings.Index(s, "\x1b[")
		end := start + 2
		for end < len(s) && !((s[end] >= 'a' && s[end] <= 'z') || (s[end] >= 'A' && s[end] <= 'Z')) {
			end++
		}
		if end >= len(s) {
			break
		}
		s = s[:start] + s[end+1:]
	}
	return s
}

func escribirJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// backendDePrueba serves the list endpoints the dashboard and boards hit.
func backendDePrueba(t *testing.T, pedidos []domain.Pedido) (*http.ServeMux, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/pedidos", func(w http.ResponseWriter, r *http.Request) {
		escribirJSON(w, pedidos)
	})
	for _, ruta := range []string{"/trillado", "/tostion", "/produccion", "/facturas"} {
		mux.HandleFunc(ruta, func(w http.ResponseWriter, r *http.Request) {
			escribirJSON(w, []any{})
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return mux, srv
}

func estadoDePrueba(t *testing.T, baseURL string, autenticado bool) *SharedState {
	t.Helper()
	cfg := config.Default()
	cfg.APIURL = baseURL

	sesion := session.NewStore(t.TempDir())
	if autenticado {
		require.NoError(t, sesion.Set(&domain.Usuario{ID: 1, Nombre: "Ana", Rol: domain.RolAdmin}, "tok-1"))
	}

	return &SharedState{
		API:    api.NewClient(baseURL, cfg.GetRequestTimeout(), sesion),
		Cache:  query.NewCache(),
		Sesion: sesion,
		Cfg:    cfg,
	}
}

func TestAppSinSesionArrancaEnLogin(t *testing.T) {
	_, srv := backendDePrueba(t, nil)
	state := estadoDePrueba(t, srv.URL, false)

	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 30))
	d.DrainInit()

	assert.Contains(t, sinAnsi(d.View()), "INICIAR SESIÓN")
}

func TestAppNavegaDelPanelAPedidos(t *testing.T) {
	pedidos := []domain.Pedido{
		{ID: 1, Codigo: "PED-001", Kilos: 50, Estado: domain.EstadoRegistrado,
			Cliente: &domain.ClienteResumen{ID: 3, Nombre: "Café La Loma"}},
		{ID: 2, Codigo: "PED-002", Kilos: 80, Estado: domain.EstadoTostion},
	}
	_, srv := backendDePrueba(t, pedidos)
	state := estadoDePrueba(t, srv.URL, true)

	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 30))
	d.DrainInit()

	vista := sinAnsi(d.View())
	assert.Contains(t, vista, "PANEL DE CONTROL")
	assert.Contains(t, vista, "Pedidos")
	assert.Contains(t, vista, "Ana")

	// Primer elemento del menú: Pedidos.
	d.PressEnter()
	vista = sinAnsi(d.View())
	assert.Contains(t, vista, "PED-001")
	assert.Contains(t, vista, "Café La Loma")

	// Volver al panel.
	d.PressEsc()
	assert.Contains(t, sinAnsi(d.View()), "PANEL DE CONTROL")
}

func TestAppSesionExpiradaVuelveALogin(t *testing.T) {
	_, srv := backendDePrueba(t, nil)
	state := estadoDePrueba(t, srv.URL, true)

	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 30))
	d.DrainInit()
	d.PressEnter() // entra a pedidos

	d.Send(sesionExpiradaMsg{})

	vista := sinAnsi(d.View())
	assert.Contains(t, vista, "INICIAR SESIÓN")
	assert.Contains(t, vista, "expiró", "el aviso de expiración queda visible")

	// La pila se reinicia: esc ya no regresa a pedidos.
	d.PressEsc()
	assert.Contains(t, sinAnsi(d.View()), "INICIAR SESIÓN")
}

func TestAppEntregaPedidoConConfirmacion(t *testing.T) {
	pedidos := []domain.Pedido{
		{ID: 7, Codigo: "PED-007", Kilos: 25, Estado: domain.EstadoListoParaEntrega},
	}
	mux, srv := backendDePrueba(t, pedidos)

	var entregas atomic.Int32
	mux.HandleFunc("/pedidos/7/entregar", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		entregas.Add(1)
		escribirJSON(w, map[string]any{"ok": true})
	})

	state := estadoDePrueba(t, srv.URL, true)
	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 30))
	d.DrainInit()
	d.PressEnter() // pedidos

	d.PressKey('e')
	vista := sinAnsi(d.View())
	assert.Contains(t, vista, "Entregar pedido")
	assert.Contains(t, vista, "PED-007")

	// Cancelar no toca el backend.
	d.PressKey('n')
	assert.Equal(t, int32(0), entregas.Load())

	// Confirmar sí.
	d.PressKey('e')
	d.PressKey('s')
	assert.Equal(t, int32(1), entregas.Load())
	assert.Contains(t, sinAnsi(d.View()), "entregado")
}

func TestAppRechazaEntregaDePedidoNoListo(t *testing.T) {
	pedidos := []domain.Pedido{
		{ID: 1, Codigo: "PED-001", Kilos: 50, Estado: domain.EstadoRegistrado},
	}
	mux, srv := backendDePrueba(t, pedidos)

	var entregas atomic.Int32
	mux.HandleFunc("/pedidos/1/entregar", func(w http.ResponseWriter, r *http.Request) {
		entregas.Add(1)
	})

	state := estadoDePrueba(t, srv.URL, true)
	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 30))
	d.DrainInit()
	d.PressEnter()

	d.PressKey('e')

	assert.Equal(t, int32(0), entregas.Load())
	assert.Contains(t, sinAnsi(d.View()), "no está listo")
}

func TestAppEditaUsuarioSinCampoContrasena(t *testing.T) {
	mux, srv := backendDePrueba(t, nil)
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		escribirJSON(w, []domain.Usuario{
			{ID: 2, Nombre: "Luis", Email: "luis@finca.co", Rol: domain.RolOperario, Activo: true},
		})
	})

	var puts atomic.Int32
	var gotBody map[string]any
	mux.HandleFunc("/users/2", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		puts.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		escribirJSON(w, map[string]any{"id": 2})
	})

	state := estadoDePrueba(t, srv.URL, true)
	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 40))
	d.DrainInit()

	// Usuarios es la séptima entrada del menú para un admin.
	for i := 0; i < 6; i++ {
		d.PressDown()
	}
	d.PressEnter()
	assert.Contains(t, sinAnsi(d.View()), "luis@finca.co")

	d.PressKey('e')
	vista := sinAnsi(d.View())
	assert.Contains(t, vista, "EDITAR USUARIO")
	assert.NotContains(t, vista, "Contraseña", "al editar no se pide contraseña")

	// Enter por campo: nombre, correo, rol, cuenta activa.
	d.PressEnter()
	d.PressEnter()
	d.PressEnter()
	d.PressEnter()

	require.Equal(t, int32(1), puts.Load())
	assert.Equal(t, "Luis", gotBody["nombre"])
	_, conPassword := gotBody["password"]
	assert.False(t, conPassword, "la edición nunca viaja con contraseña")
	assert.Contains(t, sinAnsi(d.View()), "usuario guardado")
}

func TestAppCreaMaquinaDesdeElListado(t *testing.T) {
	mux, srv := backendDePrueba(t, nil)

	var posts atomic.Int32
	var gotBody map[string]any
	mux.HandleFunc("/maquinas", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			escribirJSON(w, map[string]any{"id": 4})
			return
		}
		escribirJSON(w, []domain.Maquina{
			{ID: 1, Nombre: "Trilladora 1", Proceso: domain.ProcesoTrillado, Estado: domain.MaquinaActiva},
		})
	})

	state := estadoDePrueba(t, srv.URL, true)
	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 40))
	d.DrainInit()

	for i := 0; i < 7; i++ {
		d.PressDown()
	}
	d.PressEnter()
	assert.Contains(t, sinAnsi(d.View()), "Trilladora 1")

	d.PressKey('n')
	assert.Contains(t, sinAnsi(d.View()), "NUEVA MÁQUINA")

	d.Type("Trilladora 2")
	d.PressEnter() // nombre
	d.PressEnter() // proceso: Trillado
	d.PressEnter() // estado: Activa

	require.Equal(t, int32(1), posts.Load())
	assert.Equal(t, "Trilladora 2", gotBody["nombre"])
	assert.Equal(t, "TRILLADO", gotBody["proceso"])
	assert.Equal(t, "ACTIVA", gotBody["estado"])
	assert.Contains(t, sinAnsi(d.View()), "máquina guardada")
}

func TestAppEditaHorarioConservaFranjas(t *testing.T) {
	mux, srv := backendDePrueba(t, nil)
	mux.HandleFunc("/horarios", func(w http.ResponseWriter, r *http.Request) {
		escribirJSON(w, []domain.Horario{
			{ID: 1, Nombre: "Turno A", Activo: true, Franjas: []domain.Franja{
				{Dia: domain.Lunes, HoraInicio: "07:00", HoraFin: "16:00"},
				{Dia: domain.Martes, HoraInicio: "07:00", HoraFin: "16:00"},
			}},
		})
	})

	var puts atomic.Int32
	var gotBody map[string]any
	mux.HandleFunc("/horarios/1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		puts.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		escribirJSON(w, map[string]any{"id": 1})
	})

	state := estadoDePrueba(t, srv.URL, true)
	d := teatest.New(t, newAppModel(state), teatest.WithSize(100, 40))
	d.DrainInit()

	for i := 0; i < 8; i++ {
		d.PressDown()
	}
	d.PressEnter()
	vista := sinAnsi(d.View())
	assert.Contains(t, vista, "Turno A")
	assert.Contains(t, vista, "Lunes")

	d.PressKey('e')
	assert.Contains(t, sinAnsi(d.View()), "EDITAR HORARIO")

	d.PressEnter() // nombre sin cambios
	d.PressEnter() // sigue activo
	d.PressEnter() // no rehacer franjas

	require.Equal(t, int32(1), puts.Load())
	assert.Equal(t, "Turno A", gotBody["nombre"])
	franjas, ok := gotBody["franjas"].([]any)
	require.True(t, ok)
	assert.Len(t, franjas, 2, "las franjas existentes viajan intactas")
	assert.Contains(t, sinAnsi(d.View()), "horario guardado")
}

func TestPedidoWizardReintentaSinDuplicarLineas(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		escribirJSON(w, []domain.Cliente{{ID: 3, Nombre: "Café La Loma"}})
	})

	var posts atomic.Int32
	var cuerpos []map[string]any
	mux.HandleFunc("/pedidos", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cuerpos = append(cuerpos, body)
		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusConflict)
			escribirJSON(w, map[string]any{"mensaje": "el cliente tiene cartera vencida"})
			return
		}
		escribirJSON(w, map[string]any{"id": 11, "codigo": "PED-011", "estado": "REGISTRADO"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	state := estadoDePrueba(t, srv.URL, true)
	wizard := newPedidoWizard(state)
	d := teatest.New(t, wizard, teatest.WithSize(100, 30))
	d.DrainInit()

	d.PressEnter() // cliente único
	d.Type("2026-03-10")
	d.PressEnter() // fecha
	d.PressEnter() // empaque opcional
	d.Type("CPS")
	d.PressEnter() // presentación
	d.PressEnter() // variedad opcional
	d.Type("50")
	d.PressEnter() // kilos
	d.PressEnter() // sin otra línea: envía

	require.Equal(t, int32(1), posts.Load())
	vista := sinAnsi(d.View())
	assert.Contains(t, vista, "cartera vencida")
	assert.Contains(t, vista, "Reintentar")

	// El reintento reenvía el mismo payload sin agregar líneas.
	d.PressEnter()
	require.Equal(t, int32(2), posts.Load())
	for _, body := range cuerpos {
		detalles, ok := body["detalles"].([]any)
		require.True(t, ok)
		assert.Len(t, detalles, 1)
	}
}

func TestClienteWizardEditaSobreRegistroFresco(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ciudades", func(w http.ResponseWriter, r *http.Request) {
		escribirJSON(w, []domain.Ciudad{})
	})

	var gets atomic.Int32
	mux.HandleFunc("/clients/3", func(w http.ResponseWriter, r *http.Request) {
		gets.Add(1)
		escribirJSON(w, domain.Cliente{ID: 3, Nombre: "Café La Loma", Telefono: "311-999-0000"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	state := estadoDePrueba(t, srv.URL, true)
	viejo := domain.Cliente{ID: 3, Nombre: "Café La Loma", Telefono: "300-000-0000"}
	wizard := newClienteWizard(state, &viejo)
	d := teatest.New(t, wizard, teatest.WithSize(100, 30))
	d.DrainInit()

	// El formulario parte del registro que devuelve el backend, no de la
	// fila cacheada con la que se abrió.
	require.Equal(t, int32(1), gets.Load())
	vista := sinAnsi(d.View())
	assert.Contains(t, vista, "EDITAR CLIENTE")
	assert.Contains(t, vista, "311-999-0000")
	assert.NotContains(t, vista, "300-000-0000")
}

func TestFinalizarEtapaValidaSalidaAntesDeEnviar(t *testing.T) {
	mux, srv := backendDePrueba(t, nil)

	var finalizados atomic.Int32
	mux.HandleFunc("/trillado/9/finalizar", func(w http.ResponseWriter, r *http.Request) {
		finalizados.Add(1)
		escribirJSON(w, map[string]any{"ok": true})
	})

	state := estadoDePrueba(t, srv.URL, true)
	fila := etapaFila{id: 9, pedido: "PED-009", entrada: 100, inicio: "2026-02-01"}

	wizard := newFinalizarEtapaWizard(state, etapaTrillado, fila)
	d := teatest.New(t, wizard, teatest.WithSize(100, 30))
	d.DrainInit()

	// Salida mayor que la entrada: el formulario la rechaza localmente.
	d.Type("130")
	d.PressEnter()
	assert.Equal(t, int32(0), finalizados.Load())
	assert.Contains(t, sinAnsi(d.View()), "no puede superar la entrada")
}
