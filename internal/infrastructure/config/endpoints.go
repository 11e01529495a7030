package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
)

// Rewrite maps an exact insecure base URL to its secure replacement.
type Rewrite struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Endpoints is the catalog of base URLs the launcher may target.
type Endpoints struct {
	// Default is the base URL offered when nothing else selects one.
	Default string `yaml:"default"`
	// Allow holds glob patterns matched against the base URL host (host:port
	// when a port is present). Empty allows every host.
	Allow    []string  `yaml:"allow"`
	Rewrites []Rewrite `yaml:"rewrites"`
}

// DefaultEndpoints returns the compiled-in catalog.
func DefaultEndpoints() *Endpoints {
	return &Endpoints{
		Default: "http://34.171.49.45:4443",
		Rewrites: []Rewrite{
			{From: "http://34.171.49.45:4443", To: "https://rival-internal.secretcult.network"},
		},
	}
}

// LoadEndpoints reads the catalog from a YAML file. An empty path yields the
// defaults. Rewrites absent from the file are not merged back in.
func LoadEndpoints(path string) (*Endpoints, error) {
	if path == "" {
		return DefaultEndpoints(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	return ParseEndpoints(data)
}

// ParseEndpoints decodes and validates a YAML catalog.
func ParseEndpoints(data []byte) (*Endpoints, error) {
	var e Endpoints
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse endpoints: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Validate checks patterns and rewrite entries.
func (e *Endpoints) Validate() error {
	for _, pattern := range e.Allow {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid allow pattern %q", pattern)
		}
	}
	for i, rw := range e.Rewrites {
		if rw.From == "" || rw.To == "" {
			return fmt.Errorf("rewrite %d: from and to are required", i)
		}
	}
	return nil
}

// Allowed reports whether baseURL may be taken from an untrusted source such
// as launcher query parameters.
func (e *Endpoints) Allowed(baseURL string) bool {
	if e == nil || len(e.Allow) == 0 {
		return true
	}

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)

	for _, pattern := range e.Allow {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), host); ok {
			return true
		}
	}
	return false
}

// RewriteMap returns the rewrites keyed by source base URL.
func (e *Endpoints) RewriteMap() map[string]string {
	m := make(map[string]string)
	if e == nil {
		return m
	}
	for _, rw := range e.Rewrites {
		m[rw.From] = rw.To
	}
	return m
}
