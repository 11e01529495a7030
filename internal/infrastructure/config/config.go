package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Launcher  LauncherConfig
	Invoker   InvokerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin configuration.
type CORSConfig struct {
	// AllowOrigins lists web origins allowed to call the API, comma separated.
	// Empty admits only the service's own pages and browser extensions.
	AllowOrigins    []string `envconfig:"CORS_ALLOW_ORIGINS"`
	AllowExtensions bool     `envconfig:"CORS_ALLOW_EXTENSIONS" default:"true"`
}

// LauncherConfig holds launcher page configuration.
type LauncherConfig struct {
	// Path is the route the launcher page is served on.
	Path string `envconfig:"LAUNCHER_PATH" default:"/launcher"`
	// PublicURL is the externally visible base used when building redirects.
	// Empty means redirects are relative to the service root.
	PublicURL string `envconfig:"LAUNCHER_PUBLIC_URL" default:""`
	// StorePath is the TOML file backing persisted config. Empty keeps it in memory.
	StorePath     string `envconfig:"LAUNCHER_STORE_PATH" default:""`
	SanitizeHTML  bool   `envconfig:"LAUNCHER_SANITIZE_HTML" default:"false"`
	InjectBridge  bool   `envconfig:"LAUNCHER_INJECT_BRIDGE" default:"true"`
	EndpointsFile string `envconfig:"LAUNCHER_ENDPOINTS_FILE" default:""`
}

// InvokerConfig holds outbound invocation configuration.
type InvokerConfig struct {
	Timeout  time.Duration `envconfig:"INVOKER_TIMEOUT" default:"30s"`
	RetryMax int           `envconfig:"INVOKER_RETRY_MAX" default:"0"`
	// RateLimit is requests per second; 0 means unlimited.
	RateLimit float64 `envconfig:"INVOKER_RATE_LIMIT" default:"0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowExtensions: true,
		},
		Launcher: LauncherConfig{
			Path:         "/launcher",
			InjectBridge: true,
		},
		Invoker: InvokerConfig{
			Timeout: 30 * time.Second,
		},
	}
}
