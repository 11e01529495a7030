package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	// AllowOrigins lists web origins admitted besides the service itself.
	// Entries may hold one '*' wildcard. Empty admits no web origin.
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	// AllowExtensions admits chrome-extension:// and moz-extension:// origins,
	// which is where navigation events come from.
	AllowExtensions bool
	MaxAge          time.Duration
}

// DefaultCORSConfig returns CORS configuration for the launcher API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Accept",
			"Origin",
			"Cache-Control",
			"X-Requested-With",
			"X-Trace-ID",
			"X-Span-ID",
		},
		AllowExtensions: true,
		MaxAge:          12 * time.Hour,
	}
}

// CORS creates a CORS middleware with the provided configuration. Requests
// from origins outside the configuration are rejected with 403.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	allowExtensions := cfg.AllowExtensions
	return cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowOriginFunc: func(origin string) bool {
			return allowExtensions && IsExtensionOrigin(origin)
		},
		AllowMethods:           cfg.AllowMethods,
		AllowHeaders:           cfg.AllowHeaders,
		ExposeHeaders:          []string{"X-Trace-ID", "X-Span-ID"},
		AllowBrowserExtensions: cfg.AllowExtensions,
		AllowWildcard:          true,
		MaxAge:                 cfg.MaxAge,
	})
}

// IsExtensionOrigin reports whether origin belongs to a browser extension.
func IsExtensionOrigin(origin string) bool {
	for _, schema := range cors.ExtensionSchemas {
		if strings.HasPrefix(origin, schema) {
			return true
		}
	}
	return false
}

// PrivateOrigin guards routes that hand out session credentials. Only the
// service's own pages and browser extensions may call them, whatever the
// CORS configuration admits.
func PrivateOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || IsExtensionOrigin(origin) ||
			origin == "http://"+c.Request.Host || origin == "https://"+c.Request.Host {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Del("Access-Control-Allow-Origin")
		h.Del("Access-Control-Allow-Credentials")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
	}
}
