package query

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_CanonicalizaFiltros(t *testing.T) {
	q1 := url.Values{"estado": {"TOSTION"}, "buscar": {"finca"}}
	q2 := url.Values{"buscar": {"finca"}, "estado": {"TOSTION"}}
	assert.Equal(t, Key("pedidos", q1), Key("pedidos", q2))
	assert.Equal(t, "pedidos", Key("pedidos", nil))
	assert.True(t, len(Key("pedidos", q1)) > len("pedidos?"))
}

func TestFetch_DeduplicaConcurrentes(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(entered)
		<-release
		return []string{"PED-001"}, nil
	}

	var wg sync.WaitGroup
	results := make([]any, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Fetch(context.Background(), "pedidos", time.Minute, fn)
	}()

	<-entered // first fetch is in flight

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = c.Fetch(context.Background(), "pedidos", time.Minute, func(ctx context.Context) (any, error) {
			calls.Add(1) // must never run
			return nil, nil
		})
	}()

	// Give the second reader time to attach to the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent identical fetches must share one network call")
	assert.Equal(t, []string{"PED-001"}, results[0])
	assert.Equal(t, []string{"PED-001"}, results[1])
}

func TestFetch_FrescoNoRefetcha(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "datos", nil
	}

	_, err := c.Fetch(context.Background(), "clientes", time.Minute, fn)
	require.NoError(t, err)
	v, err := c.Fetch(context.Background(), "clientes", time.Minute, fn)
	require.NoError(t, err)

	assert.Equal(t, "datos", v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_VencidoSirveYRevalida(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	var calls atomic.Int32
	fn := func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n == 1 {
			return "viejo", nil
		}
		return "nuevo", nil
	}

	_, err := c.Fetch(context.Background(), "pedidos", 15*time.Second, fn)
	require.NoError(t, err)

	// Past the staleness window: the read returns the stale value at once
	// and a single background refetch runs.
	now = now.Add(16 * time.Second)
	v, err := c.Fetch(context.Background(), "pedidos", 15*time.Second, fn)
	require.NoError(t, err)
	assert.Equal(t, "viejo", v)

	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	// The refreshed value is now served without another call.
	v, err = c.Fetch(context.Background(), "pedidos", 15*time.Second, fn)
	require.NoError(t, err)
	assert.Equal(t, "nuevo", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMutate_InvalidaPorPrefijoYDependientes(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "x", nil
	}

	keys := []string{
		Key("pedidos", nil),
		Key("pedidos", url.Values{"estado": {"TOSTION"}}),
		Key("trillado", url.Values{"activos": {"true"}}),
		Key("clientes", nil),
	}
	for _, k := range keys {
		_, err := c.Fetch(context.Background(), k, time.Minute, fn)
		require.NoError(t, err)
	}
	require.Equal(t, int32(4), calls.Load())

	// Completing a hulling stage mutates "trillado"; both trillado keys and
	// every pedidos key must refetch, clientes must not.
	err := c.Mutate(context.Background(), "trillado", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	for _, k := range keys[:3] {
		_, err := c.Fetch(context.Background(), k, time.Minute, fn)
		require.NoError(t, err)
	}
	_, err = c.Fetch(context.Background(), Key("clientes", nil), time.Minute, fn)
	require.NoError(t, err)

	assert.Equal(t, int32(7), calls.Load(), "3 invalidated keys refetch, clientes stays cached")
}

func TestMutate_FallidaNoTocaCache(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "x", nil
	}
	_, err := c.Fetch(context.Background(), "facturas", time.Minute, fn)
	require.NoError(t, err)

	boom := errors.New("rechazo del servidor")
	err = c.Mutate(context.Background(), "facturas", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, err = c.Fetch(context.Background(), "facturas", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "failed mutation must leave cached state unchanged")
}

func TestInvalidate_GanaSobreFetchEnVuelo(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	slow := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(entered)
		<-release
		return "respuesta-vieja", nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), "pedidos", time.Minute, slow)
	}()

	<-entered
	// An invalidation initiated while the fetch is in flight must win: the
	// old response cannot be committed as fresh.
	c.Invalidate("pedidos")
	close(release)
	<-done

	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "respuesta-nueva", nil
	}
	v, err := c.Fetch(context.Background(), "pedidos", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "respuesta-nueva", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_LectorTrasInvalidarNoRecibeVueloViejo(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})

	slow := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(entered)
		<-release
		return "respuesta-vieja", nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), "pedidos", time.Minute, slow)
	}()

	<-entered
	c.Invalidate("pedidos")

	// A reader arriving after the invalidation, while the old fetch is still
	// in flight, must get fresh data instead of attaching to the old call.
	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "respuesta-nueva", nil
	}
	v, err := c.Fetch(context.Background(), "pedidos", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "respuesta-nueva", v)
	assert.Equal(t, int32(2), calls.Load())

	// The superseded flight finishes but cannot overwrite the fresh value.
	close(release)
	<-done
	v, err = c.Fetch(context.Background(), "pedidos", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, "respuesta-nueva", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchTyped(t *testing.T) {
	c := NewCache()
	v, err := Fetch(context.Background(), c, "ciudades", time.Minute, func(ctx context.Context) ([]string, error) {
		return []string{"Manizales", "Armenia"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Manizales", "Armenia"}, v)

	_, err = Fetch(context.Background(), c, "maquinas", time.Minute, func(ctx context.Context) ([]string, error) {
		return nil, errors.New("sin red")
	})
	assert.Error(t, err)
}

func TestFetchTyped_TipoDistintoEsError(t *testing.T) {
	c := NewCache()
	_, err := Fetch(context.Background(), c, "ciudades", time.Minute, func(ctx context.Context) ([]string, error) {
		return []string{"Manizales"}, nil
	})
	require.NoError(t, err)

	// The same key read with a different element type must fail loudly, not
	// hand back a zero value.
	v, err := Fetch(context.Background(), c, "ciudades", time.Minute, func(ctx context.Context) ([]int, error) {
		return []int{1}, nil
	})
	assert.Error(t, err)
	assert.Nil(t, v)
}
