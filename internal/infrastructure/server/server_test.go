package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Launcher.StorePath = filepath.Join(t.TempDir(), "rival.toml")

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return srv
}

func TestServerRoutes(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/", "/health", "/metrics", "/launcher", "/widget/session"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestServerWidgetSessionRejectsForeignOrigin(t *testing.T) {
	for _, origins := range [][]string{nil, {"*"}} {
		cfg := config.Default()
		cfg.Logging.Level = "error"
		cfg.CORS.AllowOrigins = origins

		srv, err := NewServer(cfg)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/widget/session", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, "origins %v", origins)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), "origins %v", origins)
		assert.NotContains(t, w.Body.String(), "apiKey")

		req = httptest.NewRequest(http.MethodGet, "/widget/session", nil)
		req.Header.Set("Origin", "chrome-extension://abcdefghijklmnop")
		w = httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestServerCompressesResponses(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/launcher", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	page, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(page), "Rival Widget Launcher"))
}

func TestServerRejectsBadEndpointsFile(t *testing.T) {
	cfg := config.Default()
	cfg.Launcher.EndpointsFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewServer(cfg)
	assert.Error(t, err)
}
