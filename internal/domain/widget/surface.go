package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/store"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// StatusError is a non-2xx reply to a widget invoke.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Session is the callback surface state as served to a page.
type Session struct {
	APIKey      string `json:"apiKey"`
	FunctionID  string `json:"functionId"`
	BaseURL     string `json:"baseUrl"`
	Version     string `json:"version"`
	FunctionURL string `json:"functionUrl"`
	ReloadURL   string `json:"reloadUrl"`
}

// Surface reads the current session keys on every call.
type Surface struct {
	prefs     *store.Preferences
	invoker   *invoker.Invoker
	reloadURL string
	logger    *zap.Logger
}

// NewSurface creates a surface. reloadURL is the launcher path without a
// query string.
func NewSurface(prefs *store.Preferences, inv *invoker.Invoker, reloadURL string, logger *zap.Logger) *Surface {
	return &Surface{
		prefs:     prefs,
		invoker:   inv,
		reloadURL: reloadURL,
		logger:    logging.OrNop(logger),
	}
}

func (s *Surface) session() store.Config {
	c, err := s.prefs.Session()
	if err != nil {
		s.logger.Warn("Failed to read session", zap.Error(err))
	}
	return c
}

// APIKey returns the session API key.
func (s *Surface) APIKey() string { return s.session().APIKey }

// FunctionID returns the session function id.
func (s *Surface) FunctionID() string { return s.session().FunctionID }

// BaseURL returns the session base URL.
func (s *Surface) BaseURL() string { return s.session().BaseURL }

// Version returns the session version.
func (s *Surface) Version() string { return s.session().Version }

// FunctionURL returns the endpoint invoke calls go to, rewrite applied.
func (s *Surface) FunctionURL() string {
	c := s.session()
	return s.functionURL(c)
}

func (s *Surface) functionURL(c store.Config) string {
	return s.invoker.FunctionURL(invoker.TrimBase(c.BaseURL), c.FunctionID)
}

// ReloadURL returns the launcher address with no parameters.
func (s *Surface) ReloadURL() string { return s.reloadURL }

// Snapshot returns every accessor value from one read of the store.
func (s *Surface) Snapshot() (Session, error) {
	c, err := s.prefs.Session()
	if err != nil {
		return Session{}, err
	}
	return s.snapshot(c), nil
}

func (s *Surface) snapshot(c store.Config) Session {
	return Session{
		APIKey:      c.APIKey,
		FunctionID:  c.FunctionID,
		BaseURL:     c.BaseURL,
		Version:     c.Version,
		FunctionURL: s.functionURL(c),
		ReloadURL:   s.reloadURL,
	}
}

// Invoke POSTs event with the session credentials and returns the reply
// untouched; the caller decides how to read the body. A non-2xx status yields
// *StatusError.
func (s *Surface) Invoke(ctx context.Context, event json.RawMessage) (*invoker.Response, error) {
	c := s.session()
	resp, err := s.invoker.Invoke(ctx, invoker.Request{
		BaseURL:    invoker.TrimBase(c.BaseURL),
		FunctionID: c.FunctionID,
		Version:    c.Version,
		APIKey:     c.APIKey,
		Method:     http.MethodPost,
		Event:      event,
	})
	if err != nil {
		var httpErr *invoker.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &StatusError{StatusCode: httpErr.StatusCode}
		}
		return nil, err
	}
	return resp, nil
}
