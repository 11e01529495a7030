package store

import "fmt"

// Key prefixes.
const (
	RememberPrefix = "rival_widget_"
	SessionPrefix  = "rival_"
)

// Field names shared by both key sets.
const (
	FieldAPIKey     = "api_key"
	FieldFunctionID = "function_id"
	FieldBaseURL    = "base_url"
	FieldVersion    = "version"
)

var fields = []string{FieldAPIKey, FieldFunctionID, FieldBaseURL, FieldVersion}

// Config is one set of launcher values.
type Config struct {
	APIKey     string `json:"apiKey"`
	FunctionID string `json:"functionId"`
	BaseURL    string `json:"baseUrl"`
	Version    string `json:"version"`
}

func (c Config) get(field string) string {
	switch field {
	case FieldAPIKey:
		return c.APIKey
	case FieldFunctionID:
		return c.FunctionID
	case FieldBaseURL:
		return c.BaseURL
	default:
		return c.Version
	}
}

func (c *Config) set(field, v string) {
	switch field {
	case FieldAPIKey:
		c.APIKey = v
	case FieldFunctionID:
		c.FunctionID = v
	case FieldBaseURL:
		c.BaseURL = v
	default:
		c.Version = v
	}
}

// Preferences reads and writes the remembered and session key sets.
type Preferences struct {
	store Store
}

// NewPreferences wraps s.
func NewPreferences(s Store) *Preferences {
	return &Preferences{store: s}
}

// Remembered returns the remembered values. Missing keys read as empty.
func (p *Preferences) Remembered() (Config, error) {
	return p.load(RememberPrefix)
}

// Remember stores all four values.
func (p *Preferences) Remember(c Config) error {
	return p.save(RememberPrefix, c)
}

// Forget deletes all four remembered values.
func (p *Preferences) Forget() error {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = RememberPrefix + f
	}
	if err := p.store.Delete(keys...); err != nil {
		return fmt.Errorf("forget config: %w", err)
	}
	return nil
}

// Session returns the current session values.
func (p *Preferences) Session() (Config, error) {
	return p.load(SessionPrefix)
}

// SetSession overwrites the session values.
func (p *Preferences) SetSession(c Config) error {
	return p.save(SessionPrefix, c)
}

func (p *Preferences) load(prefix string) (Config, error) {
	var c Config
	for _, f := range fields {
		v, _, err := p.store.Get(prefix + f)
		if err != nil {
			return Config{}, fmt.Errorf("read %s%s: %w", prefix, f, err)
		}
		c.set(f, v)
	}
	return c, nil
}

func (p *Preferences) save(prefix string, c Config) error {
	for _, f := range fields {
		if err := p.store.Set(prefix+f, c.get(f)); err != nil {
			return fmt.Errorf("write %s%s: %w", prefix, f, err)
		}
	}
	return nil
}
