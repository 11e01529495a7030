package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsIsolated(t *testing.T) {
	// Separate registries must not collide.
	a := NewMetrics()
	b := NewMetrics()

	a.RecordRedirect("tab_updated", "redirected")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Redirects.WithLabelValues("tab_updated", "redirected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Redirects.WithLabelValues("tab_updated", "redirected")))
	assert.Equal(t, int64(1), a.Snapshot().Redirects)
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	timer := NewTimer(m, "POST")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvocationsActive))

	timer.Stop("http_error")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InvocationsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Invocations.WithLabelValues("POST", "http_error")))

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.Invocations)
	assert.Equal(t, int64(1), snap.InvocationErrors)

	// nil collector is tolerated
	assert.GreaterOrEqual(t, NewTimer(nil, "GET").Stop("success"), time.Duration(0))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/widget/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/widget/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/widget/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "launcher_http_requests_total")
}
