package diagrams

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderService spins up a scripted diagram service.
func renderService(t *testing.T, healthy bool) (*httptest.Server, *int32, *int32) {
	t.Helper()
	var healthCalls, configureCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			atomic.AddInt32(&healthCalls, 1)
			if !healthy {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "/configure":
			atomic.AddInt32(&configureCalls, 1)
			var cfg engineConfig
			require.NoError(t, json.NewDecoder(r.Body).Decode(&cfg))
			assert.False(t, cfg.StartOnLoad)
			assert.Equal(t, EngineThemeDefault, cfg.Theme)
			assert.Equal(t, "loose", cfg.SecurityLevel)
			w.WriteHeader(http.StatusOK)
		case "/render":
			var req renderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Source == "nonsense" {
				http.Error(w, "parse error on line 1", http.StatusUnprocessableEntity)
				return
			}
			w.Header().Set("Content-Type", "image/svg+xml")
			w.Write([]byte(`<svg data-id="` + req.ID + `" data-theme="` + req.Theme + `"></svg>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &healthCalls, &configureCalls
}

func TestInitializeUsesPrimary(t *testing.T) {
	primary, healthCalls, configureCalls := renderService(t, true)
	fallback, fbHealthCalls, _ := renderService(t, true)

	e := NewServiceEngine(primary.URL, fallback.URL)
	require.NoError(t, e.Initialize(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(healthCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(configureCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(fbHealthCalls), "fallback untouched when primary is healthy")
}

func TestInitializeFallsBack(t *testing.T) {
	primary, _, _ := renderService(t, false)
	fallback, fbHealthCalls, fbConfigureCalls := renderService(t, true)

	e := NewServiceEngine(primary.URL, fallback.URL)
	require.NoError(t, e.Initialize(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(fbHealthCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(fbConfigureCalls))

	svg, err := e.Render(context.Background(), "d1", "graph TD")
	require.NoError(t, err)
	assert.Contains(t, svg, `data-id="d1"`, "renders go through the fallback endpoint")
}

func TestInitializeBothDown(t *testing.T) {
	primary, _, _ := renderService(t, false)
	fallback, _, _ := renderService(t, false)

	e := NewServiceEngine(primary.URL, fallback.URL)
	err := e.Initialize(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLibraryLoad)
}

func TestInitializeIsIdempotent(t *testing.T) {
	primary, healthCalls, configureCalls := renderService(t, true)
	fallback, _, _ := renderService(t, true)

	e := NewServiceEngine(primary.URL, fallback.URL)
	require.NoError(t, e.Initialize(context.Background()))
	require.NoError(t, e.Initialize(context.Background()))

	assert.Equal(t, int32(1), atomic.LoadInt32(healthCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(configureCalls), "baseline configuration applied once")
}

func TestRenderCarriesTheme(t *testing.T) {
	primary, _, _ := renderService(t, true)
	fallback, _, _ := renderService(t, true)

	e := NewServiceEngine(primary.URL, fallback.URL)
	require.NoError(t, e.Initialize(context.Background()))
	require.NoError(t, e.SetTheme(context.Background(), EngineThemeDark))

	svg, err := e.Render(context.Background(), "d2", "sequenceDiagram")
	require.NoError(t, err)
	assert.Contains(t, svg, `data-theme="dark"`)
}

func TestRenderServiceError(t *testing.T) {
	primary, _, _ := renderService(t, true)
	fallback, _, _ := renderService(t, true)

	e := NewServiceEngine(primary.URL, fallback.URL)
	require.NoError(t, e.Initialize(context.Background()))

	_, err := e.Render(context.Background(), "d3", "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestRenderBeforeInitialize(t *testing.T) {
	e := NewServiceEngine("http://127.0.0.1:1", "http://127.0.0.1:1")
	_, err := e.Render(context.Background(), "d4", "graph TD")
	assert.ErrorIs(t, err, ErrLibraryLoad)

	err = e.SetTheme(context.Background(), EngineThemeDark)
	assert.ErrorIs(t, err, ErrLibraryLoad)
}
