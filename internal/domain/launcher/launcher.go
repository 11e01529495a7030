package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/normalize"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/store"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/shared/id"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Progress stages reported during a submission.
const (
	StageSaved     = 30
	StagePrepared  = 60
	StageInvoked   = 90
	StageCompleted = 100
)

// Form is the launcher form as submitted.
type Form struct {
	PageID     string `json:"pageId,omitempty" form:"pageId"`
	APIKey     string `json:"apiKey" form:"apiKey"`
	FunctionID string `json:"functionId" form:"functionId"`
	BaseURL    string `json:"baseUrl" form:"baseUrl"`
	Version    string `json:"version" form:"version"`
	Remember   bool   `json:"remember" form:"remember"`
	EventData  string `json:"eventData" form:"eventData"`
	HTTPMethod string `json:"httpMethod" form:"httpMethod"`
	// PageScheme is the scheme the launcher page was served over.
	PageScheme string `json:"-" form:"-"`
}

// Result is a completed submission.
type Result struct {
	PageID       id.PageID       `json:"pageId"`
	HTML         string          `json:"html"`
	Shape        normalize.Shape `json:"shape"`
	InvocationID id.InvocationID `json:"invocationId"`
	DisplayURL   string          `json:"displayUrl"`
	Warning      string          `json:"warning,omitempty"`
	Session      store.Config    `json:"-"`
}

// Transform rewrites the returned document before it replaces the page.
type Transform func(html string, session store.Config) (string, error)

// ProgressFunc observes submission stages.
type ProgressFunc func(stage int)

type flight struct {
	cancel     context.CancelFunc
	superseded bool
}

// Launcher runs form submissions against the function endpoint and owns
// the pages they replace.
type Launcher struct {
	prefs      *store.Preferences
	invoker    *invoker.Invoker
	endpoints  *config.Endpoints
	transforms []Transform
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
	logger     *zap.Logger

	mu      sync.Mutex
	pages   map[id.PageID]*Page
	flights map[id.PageID]*flight
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithTransforms appends document transforms, applied in order.
func WithTransforms(t ...Transform) Option {
	return func(l *Launcher) { l.transforms = append(l.transforms, t...) }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// WithMetrics records response shapes.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(l *Launcher) { l.metrics = m }
}

// WithTracer opens a span per submission.
func WithTracer(t *tracing.Tracer) Option {
	return func(l *Launcher) { l.tracer = t }
}

// New creates a launcher. A nil endpoint catalog uses the defaults.
func New(prefs *store.Preferences, inv *invoker.Invoker, endpoints *config.Endpoints, opts ...Option) *Launcher {
	if endpoints == nil {
		endpoints = config.DefaultEndpoints()
	}
	l := &Launcher{
		prefs:     prefs,
		invoker:   inv,
		endpoints: endpoints,
		pages:     make(map[id.PageID]*Page),
		flights:   make(map[id.PageID]*flight),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNop(l.logger)
	return l
}

// Defaults builds the initial form from remembered values and launcher query
// parameters, and reports whether autoload should fire.
func (l *Launcher) Defaults(q url.Values) (Form, bool, error) {
	remembered, err := l.prefs.Remembered()
	if err != nil {
		return Form{}, false, fmt.Errorf("read remembered config: %w", err)
	}

	form := Form{
		FunctionID: remembered.FunctionID,
		BaseURL:    remembered.BaseURL,
		Version:    remembered.Version,
		Remember:   remembered.APIKey != "",
		HTTPMethod: invoker.DefaultMethod,
		EventData:  "{}",
	}
	if form.BaseURL == "" {
		form.BaseURL = l.endpoints.Default
	}

	// A protocol handler hands over the whole scheme URL.
	if raw := q.Get("url"); raw != "" && scheme.Matches(raw) {
		p, err := scheme.Parse(raw)
		if err != nil {
			return form, false, err
		}
		q = p.Query()
	}

	if q.Has(scheme.KeyFunctionID) {
		form.FunctionID = q.Get(scheme.KeyFunctionID)
	}
	if q.Has(scheme.KeyVersion) {
		form.Version = q.Get(scheme.KeyVersion)
	}
	if q.Has(scheme.KeyBaseURL) {
		base := q.Get(scheme.KeyBaseURL)
		if l.endpoints.Allowed(base) {
			form.BaseURL = base
		} else {
			l.logger.Warn("Ignoring base URL outside allow-list", zap.String("base_url", base))
		}
	}

	autoload := q.Get(scheme.KeyAutoload) == "true" && remembered.APIKey != ""
	if autoload {
		form.APIKey = remembered.APIKey
	}
	return form, autoload, nil
}

// Page returns a page, creating it on first use. Only a registered page
// retains the documents that replace it; the stream handler registers one per
// connection and closes it on disconnect.
func (l *Launcher) Page(pageID id.PageID) *Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.pages[pageID]
	if !ok {
		p = NewPage(pageID, "")
		l.pages[pageID] = p
	}
	return p
}

func (l *Launcher) lookup(pageID id.PageID) (*Page, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.pages[pageID]
	return p, ok
}

// Pages returns the number of registered pages.
func (l *Launcher) Pages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pages)
}

// ClosePage stops the page's timers, cancels its in-flight submission and
// forgets it.
func (l *Launcher) ClosePage(pageID id.PageID) {
	l.mu.Lock()
	p := l.pages[pageID]
	delete(l.pages, pageID)
	if f, ok := l.flights[pageID]; ok {
		f.superseded = true
		f.cancel()
		delete(l.flights, pageID)
	}
	l.mu.Unlock()

	if p != nil {
		p.Close()
	}
}

// Submit runs one submission without progress reporting.
func (l *Launcher) Submit(ctx context.Context, form Form) (*Result, error) {
	return l.SubmitWithProgress(ctx, form, nil)
}

// SubmitWithProgress runs one submission. A newer submission for the same
// page cancels this one, which then fails with ErrSuperseded.
func (l *Launcher) SubmitWithProgress(ctx context.Context, form Form, progress ProgressFunc) (res *Result, err error) {
	if progress == nil {
		progress = func(int) {}
	}

	form.APIKey = strings.TrimSpace(form.APIKey)
	form.FunctionID = strings.TrimSpace(form.FunctionID)
	form.BaseURL = invoker.TrimBase(form.BaseURL)
	form.Version = strings.TrimSpace(form.Version)

	if form.FunctionID == "" {
		return nil, scheme.ErrMissingFunctionID
	}

	event, err := parseEvent(form.EventData)
	if err != nil {
		return nil, err
	}
	method, err := invoker.NormalizeMethod(form.HTTPMethod)
	if err != nil {
		return nil, err
	}

	pageID, ephemeral := l.pageID(form.PageID)
	ctx, f, done := l.begin(ctx, pageID)
	defer done()

	if l.tracer != nil {
		var span *tracing.Span
		span, ctx = l.tracer.StartSpan(ctx, "launcher.submit")
		span.SetTag("page_id", pageID.String())
		span.SetTag("function_id", form.FunctionID)
		defer l.tracer.Submit(span)
		defer func() {
			if err != nil {
				span.SetError(err)
			}
		}()
	}

	session := store.Config{
		APIKey:     form.APIKey,
		FunctionID: form.FunctionID,
		BaseURL:    form.BaseURL,
		Version:    form.Version,
	}
	if form.Remember {
		err = l.prefs.Remember(session)
	} else {
		err = l.prefs.Forget()
	}
	if err != nil {
		return nil, fmt.Errorf("persist config: %w", err)
	}
	if err = l.prefs.SetSession(session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	progress(StageSaved)

	res = &Result{
		PageID:     pageID,
		DisplayURL: l.invoker.DisplayURL(form.BaseURL, form.FunctionID),
		Session:    session,
	}
	mixed := l.invoker.MixedContent(form.PageScheme, form.BaseURL)
	if mixed {
		res.Warning = MixedContentWarning
	}
	progress(StagePrepared)

	log := l.logger.With(
		zap.String("page_id", pageID.String()),
		zap.String("function_id", form.FunctionID),
		logging.APIKey(form.APIKey),
	)

	resp, err := l.invoker.Invoke(ctx, invoker.Request{
		BaseURL:    form.BaseURL,
		FunctionID: form.FunctionID,
		Version:    form.Version,
		APIKey:     form.APIKey,
		Method:     method,
		Event:      event,
	})
	if err != nil {
		if l.superseded(f) {
			log.Info("Submission superseded")
			return nil, ErrSuperseded
		}
		log.Warn("Submission failed", zap.Error(err))
		return nil, &SubmitError{Err: err, MixedContent: mixed}
	}
	res.InvocationID = resp.InvocationID
	progress(StageInvoked)

	html, shape, err := normalize.Detect(resp.Body, resp.ContentType)
	if l.metrics != nil {
		l.metrics.RecordShape(string(shape))
	}
	if err != nil {
		log.Warn("Unusable response", zap.String("shape", string(shape)), zap.Error(err))
		return nil, &SubmitError{Err: err, MixedContent: mixed}
	}
	res.Shape = shape
	progress(StageCompleted)

	for _, t := range l.transforms {
		if html, err = t(html, session); err != nil {
			return nil, fmt.Errorf("transform document: %w", err)
		}
	}
	res.HTML = html

	if l.superseded(f) {
		return nil, ErrSuperseded
	}
	if !ephemeral {
		if page, ok := l.lookup(pageID); ok {
			page.Replace(html)
		}
	}

	log.Info("Page replaced",
		zap.String("invocation_id", resp.InvocationID.String()),
		zap.String("shape", string(shape)),
		zap.Int("bytes", len(html)))
	return res, nil
}

// pageID resolves the submitted page id. Submissions without a usable id get
// a fresh one.
func (l *Launcher) pageID(raw string) (id.PageID, bool) {
	if raw != "" {
		if pid, err := id.ParsePageID(raw); err == nil {
			return pid, false
		}
	}
	return id.NewPageID(), true
}

// begin registers a submission for pageID, cancelling any earlier one.
func (l *Launcher) begin(ctx context.Context, pageID id.PageID) (context.Context, *flight, func()) {
	ctx, cancel := context.WithCancel(ctx)
	f := &flight{cancel: cancel}

	l.mu.Lock()
	if prev, ok := l.flights[pageID]; ok {
		prev.superseded = true
		prev.cancel()
	}
	l.flights[pageID] = f
	l.mu.Unlock()

	return ctx, f, func() {
		l.mu.Lock()
		if l.flights[pageID] == f {
			delete(l.flights, pageID)
		}
		l.mu.Unlock()
		cancel()
	}
}

// superseded reports whether a newer submission or a page close cancelled f.
func (l *Launcher) superseded(f *flight) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return f.superseded
}

func parseEvent(data string) (json.RawMessage, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return json.RawMessage("{}"), nil
	}
	if !sonic.Valid([]byte(data)) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(data), nil
}
