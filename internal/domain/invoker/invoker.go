package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/shared/id"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Methods lists the accepted HTTP methods.
var Methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// DefaultMethod is used when a request names none.
const DefaultMethod = http.MethodPost

// Request describes one invocation. BaseURL is used as given; callers trim it
// with TrimBase first.
type Request struct {
	BaseURL    string
	FunctionID string
	Version    string
	APIKey     string
	Method     string
	// Event is the raw JSON event. Empty means {}.
	Event json.RawMessage
}

// Response is a successful (2xx) reply.
type Response struct {
	InvocationID id.InvocationID
	URL          string
	StatusCode   int
	ContentType  string
	Body         []byte
	Duration     time.Duration
}

type requestBody struct {
	Version string          `json:"version"`
	Event   json.RawMessage `json:"event"`
}

// Invoker issues invoke calls through the shared HTTP client.
type Invoker struct {
	client   *client.Client
	rewrites RewriteTable
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	logger   *zap.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithMetrics records invocations.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(i *Invoker) { i.metrics = m }
}

// WithTracer opens a span per invocation.
func WithTracer(t *tracing.Tracer) Option {
	return func(i *Invoker) { i.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Invoker) { i.logger = l }
}

// New creates an invoker. A nil rewrite table disables rewriting.
func New(c *client.Client, rewrites RewriteTable, opts ...Option) *Invoker {
	i := &Invoker{
		client:   c,
		rewrites: rewrites,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.OrNop(i.logger)
	return i
}

// DisplayURL is the endpoint as the user configured it.
func (i *Invoker) DisplayURL(baseURL, functionID string) string {
	return baseURL + "/api/v1/functions/" + url.PathEscape(functionID) + "/invoke"
}

// FunctionURL is the endpoint actually called, with rewrites applied.
func (i *Invoker) FunctionURL(baseURL, functionID string) string {
	target, _ := i.rewrites.Apply(baseURL)
	return i.DisplayURL(target, functionID)
}

// MixedContent reports whether a page served over pageScheme would call a
// plain-HTTP endpoint that no rewrite covers.
func (i *Invoker) MixedContent(pageScheme, baseURL string) bool {
	if !strings.EqualFold(pageScheme, "https") || !strings.HasPrefix(baseURL, "http://") {
		return false
	}
	_, rewritten := i.rewrites.Apply(baseURL)
	return !rewritten
}

// NormalizeMethod upper-cases m, defaulting to POST, and rejects anything
// outside Methods.
func NormalizeMethod(m string) (string, error) {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return DefaultMethod, nil
	}
	for _, allowed := range Methods {
		if m == allowed {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, m)
}

// Invoke calls the function once. A non-2xx status yields *HTTPError.
func (i *Invoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.FunctionID) == "" {
		return nil, scheme.ErrMissingFunctionID
	}
	method, err := NormalizeMethod(req.Method)
	if err != nil {
		return nil, err
	}

	event := req.Event
	if len(event) == 0 {
		event = json.RawMessage("{}")
	}

	invocationID := id.NewInvocationID()
	target := i.FunctionURL(req.BaseURL, req.FunctionID)

	log := i.logger.With(
		zap.String("invocation_id", invocationID.String()),
		zap.String("function_id", req.FunctionID),
		zap.String("method", method),
		logging.APIKey(req.APIKey),
	)
	if target != i.DisplayURL(req.BaseURL, req.FunctionID) {
		log.Debug("Rewrote insecure endpoint", zap.String("target", target))
	}

	if i.tracer != nil {
		var span *tracing.Span
		span, ctx = i.tracer.StartSpan(ctx, "invoke")
		span.SetTag("function_id", req.FunctionID)
		span.SetTag("invocation_id", invocationID.String())
		defer i.tracer.Submit(span)
		defer func() {
			if err != nil {
				span.SetError(err)
			}
		}()
	}

	var body []byte
	if method != http.MethodGet {
		body, err = sonic.Marshal(requestBody{Version: req.Version, Event: event})
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	timer := monitoring.NewTimer(i.metrics, method)

	resp, err := i.client.Execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		r.SetHeader("Content-Type", "application/json").
			SetHeader("Authorization", req.APIKey)
		if body != nil {
			r.SetBody(body)
		}
		return r.Execute(method, target)
	})
	if err != nil {
		d := timer.Stop("transport_error")
		log.Warn("Invocation failed", zap.Duration("duration", d), zap.Error(err))
		err = fmt.Errorf("invoke %s: %w", i.DisplayURL(req.BaseURL, req.FunctionID), err)
		return nil, err
	}

	code := resp.StatusCode()
	if code < 200 || code > 299 {
		d := timer.Stop("http_" + strconv.Itoa(code))
		err = &HTTPError{
			StatusCode: code,
			Status:     statusText(resp),
			Body:       resp.String(),
		}
		log.Warn("Function returned error status", zap.Int("status", code), zap.Duration("duration", d))
		return nil, err
	}

	d := timer.Stop("success")
	log.Info("Function invoked", zap.Int("status", code), zap.Duration("duration", d), zap.Int("bytes", len(resp.Body())))

	return &Response{
		InvocationID: invocationID,
		URL:          target,
		StatusCode:   code,
		ContentType:  resp.Header().Get("Content-Type"),
		Body:         resp.Body(),
		Duration:     d,
	}, nil
}

// statusText returns the reason phrase, e.g. "Not Found".
func statusText(resp *resty.Response) string {
	code := strconv.Itoa(resp.StatusCode())
	if s := strings.TrimSpace(strings.TrimPrefix(resp.Status(), code)); s != "" {
		return s
	}
	return http.StatusText(resp.StatusCode())
}
