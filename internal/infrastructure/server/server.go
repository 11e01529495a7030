package server

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/api/http"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/api/middleware"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/api/ws"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/interceptor"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/store"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/widget"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/providers/http/client"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	handler  stdhttp.Handler
	http     *stdhttp.Server
	launcher *launcher.Launcher
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing RivalWidget launcher",
		zap.String("port", cfg.Server.Port),
		zap.String("launcher_path", cfg.Launcher.Path),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("launcher", logger.Component("tracing"))

	endpoints, err := config.LoadEndpoints(cfg.Launcher.EndpointsFile)
	if err != nil {
		return nil, err
	}

	kv, err := openStore(cfg.Launcher.StorePath)
	if err != nil {
		return nil, err
	}
	prefs := store.NewPreferences(kv)

	opts := client.DefaultOptions()
	opts.Timeout = cfg.Invoker.Timeout
	opts.RetryMax = cfg.Invoker.RetryMax
	opts.RateLimit = cfg.Invoker.RateLimit
	opts.Logger = logger.Component("client")
	opts.OnStateChange = func(name string, from, to resilience.State) {
		metrics.SetBreakerState(name, int(to))
	}
	httpClient := client.NewClient(opts)

	inv := invoker.New(httpClient, invoker.RewriteTable(endpoints.RewriteMap()),
		invoker.WithMetrics(metrics),
		invoker.WithTracer(tracer),
		invoker.WithLogger(logger.Component("invoker")),
	)

	surface := widget.NewSurface(prefs, inv, cfg.Launcher.Path, logger.Component("widget"))

	var transforms []launcher.Transform
	if cfg.Launcher.SanitizeHTML {
		transforms = append(transforms, launcher.Sanitize())
	}
	if cfg.Launcher.InjectBridge {
		transforms = append(transforms, widget.NewBridge(surface).Inject)
	}

	l := launcher.New(prefs, inv, endpoints,
		launcher.WithTransforms(transforms...),
		launcher.WithMetrics(metrics),
		launcher.WithTracer(tracer),
		launcher.WithLogger(logger.Component("launcher")),
	)

	launcherBase := strings.TrimSuffix(cfg.Launcher.PublicURL, "/") + cfg.Launcher.Path
	icpt := interceptor.New(launcherBase, &interceptor.ReplyNavigator{}, metrics, logger.Component("interceptor"))

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowExtensions = cfg.CORS.AllowExtensions
	router.Use(middleware.CORS(corsConfig))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(http.Deps{
		Launcher:     l,
		Interceptor:  icpt,
		Surface:      surface,
		Endpoints:    endpoints,
		Metrics:      metrics,
		Client:       httpClient,
		LauncherPath: cfg.Launcher.Path,
		Logger:       logger.Component("http"),
	})
	handlers.Register(router)

	wsHandler := ws.NewHandler(l, metrics, logger.Component("ws"))
	router.GET(http.StreamPath, wsHandler.HandleConnection)

	logger.Info("Server initialized successfully",
		zap.Int("rewrites", len(endpoints.Rewrites)),
		zap.Int("allow_patterns", len(endpoints.Allow)),
		zap.Bool("persistent_store", cfg.Launcher.StorePath != ""),
	)

	return &Server{
		router:   router,
		handler:  compress(router),
		launcher: l,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

func openStore(path string) (store.Store, error) {
	if path == "" {
		return store.NewMemoryStore(), nil
	}
	fs, err := store.OpenFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return fs, nil
}

// compress gzips responses except the websocket stream, which must be
// hijacked from the raw writer.
func compress(router *gin.Engine) stdhttp.Handler {
	gz := gzhttp.GzipHandler(router)
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.URL.Path == http.StreamPath {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() stdhttp.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.http = &stdhttp.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var err error
	if s.http != nil {
		if err = s.http.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
			err = fmt.Errorf("failed to shut down http server: %w", err)
		}
	}
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return err
}
