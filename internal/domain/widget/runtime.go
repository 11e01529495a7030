package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
)

// RuntimeConfig bounds headless script execution.
type RuntimeConfig struct {
	// Timeout interrupts a script that runs longer.
	Timeout time.Duration
	// MaxCallStackSize limits recursion depth. 0 keeps goja's default.
	MaxCallStackSize int
}

// DefaultRuntimeConfig returns the default limits.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Timeout:          5 * time.Second,
		MaxCallStackSize: 1024,
	}
}

// LogEntry is one console call.
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Result is the outcome of one Execute.
type Result struct {
	Value    any           `json:"value,omitempty"`
	Console  []LogEntry    `json:"console"`
	Duration time.Duration `json:"duration"`
	Reloaded bool          `json:"reloaded"`
}

// Runtime runs widget scripts in a goja VM with RivalWidget and console
// globals. A Runtime runs one script at a time.
type Runtime struct {
	surface *Surface
	config  RuntimeConfig

	mu       sync.Mutex
	vm       *goja.Runtime
	console  []LogEntry
	reloaded bool
}

// NewRuntime creates a runtime bound to s.
func NewRuntime(s *Surface, config RuntimeConfig) *Runtime {
	return &Runtime{surface: s, config: config}
}

// Execute runs script in a fresh VM. doc, when non-nil, backs the document
// global. A script that throws returns the partial result with the error.
func (r *Runtime) Execute(ctx context.Context, script string, doc *goquery.Document) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	if err := r.reset(ctx, doc); err != nil {
		return nil, err
	}

	timeout := r.config.Timeout
	if timeout <= 0 {
		timeout = DefaultRuntimeConfig().Timeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	stop := make(chan struct{})
	defer close(stop)
	go func(vm *goja.Runtime) {
		select {
		case <-timer.C:
			vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-stop:
		}
	}(r.vm)

	val, err := r.vm.RunString(script)

	res := &Result{
		Console:  append([]LogEntry{}, r.console...),
		Duration: time.Since(start),
		Reloaded: r.reloaded,
	}
	if err != nil {
		return res, err
	}
	res.Value = export(val)
	return res, nil
}

// ExecuteDocument runs every inline script of html in order, sharing one
// VM, and stops at the first failure.
func (r *Runtime) ExecuteDocument(ctx context.Context, html string) (*Result, error) {
	scripts, err := InlineScripts(html)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var b strings.Builder
	for _, s := range scripts {
		b.WriteString(s)
		b.WriteString(";\n")
	}
	return r.Execute(ctx, b.String(), doc)
}

func (r *Runtime) reset(ctx context.Context, doc *goquery.Document) error {
	r.vm = goja.New()
	r.console = nil
	r.reloaded = false

	if r.config.MaxCallStackSize > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}

	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}
	// Timers never fire headlessly.
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := r.vm.Set(name, noop); err != nil {
			return err
		}
	}

	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(level, r.consoleFunc(level)); err != nil {
			return err
		}
	}
	if err := r.vm.Set("console", console); err != nil {
		return err
	}

	if err := r.vm.Set("RivalWidget", r.widgetObject(ctx)); err != nil {
		return err
	}

	if doc != nil {
		return r.injectDocument(doc)
	}
	return nil
}

func (r *Runtime) widgetObject(ctx context.Context) *goja.Object {
	w := r.vm.NewObject()
	_ = w.Set("getApiKey", r.surface.APIKey)
	_ = w.Set("getFunctionId", r.surface.FunctionID)
	_ = w.Set("getBaseUrl", r.surface.BaseURL)
	_ = w.Set("getVersion", r.surface.Version)
	_ = w.Set("getFunctionUrl", r.surface.FunctionURL)
	_ = w.Set("reload", func() { r.reloaded = true })
	_ = w.Set("invokeFunction", func(call goja.FunctionCall) goja.Value {
		event, err := eventJSON(call.Argument(0))
		if err != nil {
			return r.rejected(r.vm.NewGoError(err))
		}
		resp, err := r.surface.Invoke(ctx, event)
		if err != nil {
			return r.rejected(r.vm.NewGoError(err))
		}
		return r.resolved(r.responseValue(resp))
	})
	return w
}

// responseValue mirrors the parts of a fetch Response widgets read: status,
// ok, headers.get, and the text and json body readers.
func (r *Runtime) responseValue(resp *invoker.Response) *goja.Object {
	body := string(resp.Body)

	headers := r.vm.NewObject()
	_ = headers.Set("get", func(name string) goja.Value {
		if strings.EqualFold(name, "Content-Type") && resp.ContentType != "" {
			return r.vm.ToValue(resp.ContentType)
		}
		return goja.Null()
	})

	obj := r.vm.NewObject()
	_ = obj.Set("status", resp.StatusCode)
	_ = obj.Set("ok", resp.StatusCode >= 200 && resp.StatusCode <= 299)
	_ = obj.Set("url", resp.URL)
	_ = obj.Set("headers", headers)
	_ = obj.Set("text", func() goja.Value {
		return r.resolved(r.vm.ToValue(body))
	})
	_ = obj.Set("json", func() goja.Value {
		parse, _ := goja.AssertFunction(r.vm.Get("JSON").ToObject(r.vm).Get("parse"))
		v, err := parse(goja.Undefined(), r.vm.ToValue(body))
		if err != nil {
			var ex *goja.Exception
			if errors.As(err, &ex) {
				return r.rejected(ex.Value())
			}
			return r.rejected(r.vm.NewGoError(err))
		}
		return r.resolved(v)
	})
	return obj
}

func (r *Runtime) resolved(v any) goja.Value {
	promise, resolve, _ := r.vm.NewPromise()
	_ = resolve(v)
	return r.vm.ToValue(promise)
}

func (r *Runtime) rejected(reason any) goja.Value {
	promise, _, reject := r.vm.NewPromise()
	_ = reject(reason)
	return r.vm.ToValue(promise)
}

func eventJSON(v goja.Value) (json.RawMessage, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return json.RawMessage("{}"), nil
	}
	data, err := sonic.Marshal(v.Export())
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

func (r *Runtime) consoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		return goja.Undefined()
	}
}

func export(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	if p, ok := val.Export().(*goja.Promise); ok {
		switch p.State() {
		case goja.PromiseStateFulfilled:
			return export(p.Result())
		case goja.PromiseStateRejected:
			return nil
		}
	}
	return val.Export()
}
