package http

import (
	"net/http"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/api/middleware"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/interceptor"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/widget"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/providers/http/client"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Deps are the components the handlers serve.
type Deps struct {
	Launcher    *launcher.Launcher
	Interceptor *interceptor.Interceptor
	Surface     *widget.Surface
	Endpoints   *config.Endpoints
	Metrics     *monitoring.Metrics
	Client      *client.Client
	// LauncherPath is where the launcher page is served.
	LauncherPath string
	Logger       *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	launcher     *launcher.Launcher
	interceptor  *interceptor.Interceptor
	surface      *widget.Surface
	endpoints    *config.Endpoints
	metrics      *monitoring.Metrics
	client       *client.Client
	launcherPath string
	logger       *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	path := d.LauncherPath
	if path == "" {
		path = "/launcher"
	}
	endpoints := d.Endpoints
	if endpoints == nil {
		endpoints = config.DefaultEndpoints()
	}
	return &Handlers{
		launcher:     d.Launcher,
		interceptor:  d.Interceptor,
		surface:      d.Surface,
		endpoints:    endpoints,
		metrics:      d.Metrics,
		client:       d.Client,
		launcherPath: path,
		logger:       logging.OrNop(d.Logger),
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET(h.launcherPath, h.LauncherPage)
	r.POST(h.launcherPath, h.LauncherSubmit)

	r.POST("/navigation/events", h.NavigationEvent)
	r.POST("/navigation/open", h.NavigationOpen)

	// Session credentials stay with the service's own pages and extensions.
	private := r.Group("/widget", middleware.PrivateOrigin())
	private.GET("/session", h.WidgetSession)
	private.POST("/invoke", h.WidgetInvoke)

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "online",
		"service":  "RivalWidget Launcher",
		"version":  Version,
		"launcher": h.launcherPath,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{"status": "healthy"}
	if h.launcher != nil {
		resp["pages"] = h.launcher.Pages()
	}
	if h.client != nil {
		counts := h.client.BreakerCounts()
		resp["breaker"] = gin.H{
			"state":                h.client.BreakerState().String(),
			"requests":             counts.Requests,
			"consecutive_failures": counts.ConsecutiveFailures,
		}
		if h.client.BreakerState() != resilience.StateClosed {
			resp["status"] = "degraded"
		}
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}
