package scheme

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme names.
const (
	Rival    = "rival"
	WebRival = "web+rival"
)

// Launcher query keys.
const (
	KeyFunctionID = "functionId"
	KeyBaseURL    = "baseUrl"
	KeyVersion    = "version"
	KeyAutoload   = "autoload"
)

const versionSegment = "version="

var (
	// ErrMissingFunctionID is returned when the URL carries no function id.
	ErrMissingFunctionID = errors.New("no function ID provided")
	// ErrProtocolUnsupported is returned for schemes other than rival and web+rival.
	ErrProtocolUnsupported = errors.New("unsupported protocol")
)

// Params are the values forwarded from a scheme URL to the launcher.
type Params struct {
	FunctionID string
	BaseURL    string
	BaseURLSet bool
	Version    string
	VersionSet bool
	// Autoload is forwarded verbatim; only "true" triggers a launch.
	Autoload string
}

// Matches reports whether raw starts with a rival scheme prefix.
func Matches(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.HasPrefix(s, Rival+"://") || strings.HasPrefix(s, WebRival+"://")
}

// Parse extracts the function id and optional parameters from a scheme URL.
func Parse(raw string) (Params, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Params{}, fmt.Errorf("parse scheme url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case Rival:
		return parseRival(u)
	case WebRival:
		return parseWebRival(u)
	default:
		return Params{}, fmt.Errorf("%w: %q", ErrProtocolUnsupported, u.Scheme)
	}
}

func parseRival(u *url.URL) (Params, error) {
	id, _ := functionID(u)
	if id == "" {
		return Params{}, ErrMissingFunctionID
	}

	p := Params{FunctionID: id, Autoload: "true"}
	q := u.Query()
	if q.Has(KeyBaseURL) {
		p.BaseURL, p.BaseURLSet = q.Get(KeyBaseURL), true
	}
	if q.Has(KeyVersion) {
		p.Version, p.VersionSet = q.Get(KeyVersion), true
	}
	if q.Has(KeyAutoload) {
		p.Autoload = q.Get(KeyAutoload)
	}
	return p, nil
}

func parseWebRival(u *url.URL) (Params, error) {
	id, rest := functionID(u)
	if id == "" {
		return Params{}, ErrMissingFunctionID
	}

	p := Params{FunctionID: id, Autoload: "true"}
	if len(rest) > 0 && strings.HasPrefix(rest[0], versionSegment) {
		v := strings.TrimPrefix(rest[0], versionSegment)
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		p.Version, p.VersionSet = v, true
	}
	return p, nil
}

// functionID returns the id and the path segments that follow it. The id is
// the host name without any port, or the first path segment when the host is
// empty, or the opaque part for scheme:id URLs.
func functionID(u *url.URL) (string, []string) {
	if u.Opaque != "" {
		segs := strings.Split(u.Opaque, "/")
		return segs[0], segs[1:]
	}

	var segs []string
	if trimmed := strings.Trim(u.EscapedPath(), "/"); trimmed != "" {
		segs = strings.Split(trimmed, "/")
	}

	if host := u.Hostname(); host != "" {
		return host, segs
	}
	if len(segs) == 0 {
		return "", nil
	}
	id, err := url.PathUnescape(segs[0])
	if err != nil {
		id = segs[0]
	}
	return id, segs[1:]
}

// Query builds the launcher query for p.
func (p Params) Query() url.Values {
	q := url.Values{}
	q.Set(KeyFunctionID, p.FunctionID)
	if p.BaseURLSet {
		q.Set(KeyBaseURL, p.BaseURL)
	}
	if p.VersionSet {
		q.Set(KeyVersion, p.Version)
	}
	q.Set(KeyAutoload, p.Autoload)
	return q
}

// LauncherURL appends p to the launcher page URL, keeping any query the base
// already carries.
func LauncherURL(launcherBase string, p Params) string {
	u, err := url.Parse(launcherBase)
	if err != nil {
		return launcherBase + "?" + p.Query().Encode()
	}

	q := u.Query()
	for k, vs := range p.Query() {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenRequest asks for a function to be opened in a new tab.
type OpenRequest struct {
	FunctionID string `json:"functionId"`
	BaseURL    string `json:"baseUrl,omitempty"`
	Version    string `json:"version,omitempty"`
}

// FromOpenRequest converts an open request to launcher params. Autoload is
// always on; empty base URL and version are omitted.
func FromOpenRequest(r OpenRequest) (Params, error) {
	id := strings.TrimSpace(r.FunctionID)
	if id == "" {
		return Params{}, ErrMissingFunctionID
	}

	p := Params{FunctionID: id, Autoload: "true"}
	if r.BaseURL != "" {
		p.BaseURL, p.BaseURLSet = r.BaseURL, true
	}
	if r.Version != "" {
		p.Version, p.VersionSet = r.Version, true
	}
	return p, nil
}
