// Package interceptor turns navigations to scheme URLs into launcher redirects.
package interceptor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"go.uber.org/zap"
)

// EventKind names the browser event that carried a navigation.
type EventKind string

const (
	EventTabUpdated     EventKind = "tab_updated"
	EventBeforeNavigate EventKind = "before_navigate"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	return k == EventTabUpdated || k == EventBeforeNavigate
}

// TabState is the per-tab interception state.
type TabState int

const (
	Idle TabState = iota
	Redirecting
)

func (s TabState) String() string {
	if s == Redirecting {
		return "redirecting"
	}
	return "idle"
}

// Event is a navigation observed in a tab.
type Event struct {
	Kind  EventKind `json:"kind"`
	TabID int       `json:"tabId"`
	URL   string    `json:"url"`
}

// Navigator moves tabs. Implementations talk to the browser shell.
type Navigator interface {
	UpdateTab(ctx context.Context, tabID int, url string) error
	CreateTab(ctx context.Context, url string) (int, error)
}

// Recorder receives interception outcomes for metrics.
type Recorder interface {
	RecordRedirect(trigger, outcome string)
}

// Outcome labels.
const (
	OutcomeRedirected = "redirected"
	OutcomeIgnored    = "ignored"
	OutcomeBusy       = "busy"
	OutcomeParseError = "parse_error"
	OutcomeNavError   = "navigation_error"
)

// ErrUnknownEvent is returned for an unrecognized event kind.
var ErrUnknownEvent = errors.New("unknown navigation event")

// ErrTabBusy is returned when a tab is already being redirected.
var ErrTabBusy = errors.New("tab redirect already in progress")

// NavigationError is a failure of the Navigator itself.
type NavigationError struct {
	Op    string
	TabID int
	Err   error
}

func (e *NavigationError) Error() string {
	if e.Op == "create" {
		return fmt.Sprintf("create tab: %v", e.Err)
	}
	return fmt.Sprintf("%s tab %d: %v", e.Op, e.TabID, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Decision describes what Handle did.
type Decision struct {
	Redirected  bool
	LauncherURL string
	TabID       int
}

// Interceptor watches navigations and redirects scheme URLs to the launcher.
type Interceptor struct {
	launcherBase string
	nav          Navigator
	recorder     Recorder
	logger       *zap.Logger

	mu   sync.Mutex
	tabs map[int]TabState
}

// New creates an interceptor redirecting to launcherBase.
func New(launcherBase string, nav Navigator, recorder Recorder, logger *zap.Logger) *Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interceptor{
		launcherBase: launcherBase,
		nav:          nav,
		recorder:     recorder,
		logger:       logger,
		tabs:         make(map[int]TabState),
	}
}

// State returns the current state of a tab.
func (i *Interceptor) State(tabID int) TabState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tabs[tabID]
}

// Handle processes one navigation event. Non-matching URLs are ignored. A
// parse or navigation failure is logged and returned; the tab goes back to
// idle and nothing is retried.
func (i *Interceptor) Handle(ctx context.Context, ev Event) (Decision, error) {
	if !ev.Kind.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	if !scheme.Matches(ev.URL) {
		i.record(ev.Kind, OutcomeIgnored)
		return Decision{TabID: ev.TabID}, nil
	}

	if !i.begin(ev.TabID) {
		i.record(ev.Kind, OutcomeBusy)
		return Decision{TabID: ev.TabID}, ErrTabBusy
	}
	defer i.end(ev.TabID)

	log := i.logger.With(zap.Int("tab_id", ev.TabID), zap.String("trigger", string(ev.Kind)))

	params, err := scheme.Parse(ev.URL)
	if err != nil {
		log.Error("Error handling scheme URL", zap.String("url", ev.URL), zap.Error(err))
		i.record(ev.Kind, OutcomeParseError)
		return Decision{TabID: ev.TabID}, err
	}

	target := scheme.LauncherURL(i.launcherBase, params)
	if err := i.nav.UpdateTab(ctx, ev.TabID, target); err != nil {
		log.Error("Failed to redirect tab", zap.String("launcher_url", target), zap.Error(err))
		i.record(ev.Kind, OutcomeNavError)
		return Decision{TabID: ev.TabID}, &NavigationError{Op: "update", TabID: ev.TabID, Err: err}
	}

	log.Info("Redirected scheme URL to launcher",
		zap.String("function_id", params.FunctionID),
		zap.String("launcher_url", target))
	i.record(ev.Kind, OutcomeRedirected)

	return Decision{Redirected: true, LauncherURL: target, TabID: ev.TabID}, nil
}

// Open creates a new tab on the launcher for r with autoload on.
func (i *Interceptor) Open(ctx context.Context, r scheme.OpenRequest) (Decision, error) {
	params, err := scheme.FromOpenRequest(r)
	if err != nil {
		return Decision{}, err
	}

	target := scheme.LauncherURL(i.launcherBase, params)
	tabID, err := i.nav.CreateTab(ctx, target)
	if err != nil {
		i.logger.Error("Failed to open function tab", zap.String("function_id", params.FunctionID), zap.Error(err))
		return Decision{}, &NavigationError{Op: "create", Err: err}
	}

	i.logger.Info("Opened function in new tab",
		zap.String("function_id", params.FunctionID),
		zap.Int("tab_id", tabID))

	return Decision{Redirected: true, LauncherURL: target, TabID: tabID}, nil
}

func (i *Interceptor) begin(tabID int) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.tabs[tabID] == Redirecting {
		return false
	}
	i.tabs[tabID] = Redirecting
	return true
}

func (i *Interceptor) end(tabID int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.tabs, tabID)
}

func (i *Interceptor) record(kind EventKind, outcome string) {
	if i.recorder != nil {
		i.recorder.RecordRedirect(string(kind), outcome)
	}
}
