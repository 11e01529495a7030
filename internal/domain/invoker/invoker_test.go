package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/providers/http/client"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	auth   string
	ctype  string
	body   []byte
}

func newServer(t *testing.T, status int, reply string, seen *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.Path
		seen.auth = r.Header.Get("Authorization")
		seen.ctype = r.Header.Get("Content-Type")
		seen.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newInvoker(rewrites RewriteTable, opts ...Option) *Invoker {
	return New(client.NewClient(client.DefaultOptions()), rewrites, opts...)
}

func TestInvokePost(t *testing.T) {
	var seen captured
	srv := newServer(t, http.StatusOK, `{"body":"<p>hi</p>"}`, &seen)
	metrics := monitoring.NewMetrics()
	inv := newInvoker(nil, WithMetrics(metrics))

	resp, err := inv.Invoke(context.Background(), Request{
		BaseURL:    srv.URL,
		FunctionID: "fn-1",
		Version:    "Draft",
		APIKey:     "key-123",
		Event:      json.RawMessage(`{"a":1}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, "/api/v1/functions/fn-1/invoke", seen.path)
	assert.Equal(t, "key-123", seen.auth)
	assert.Equal(t, "application/json", seen.ctype)
	assert.JSONEq(t, `{"version":"Draft","event":{"a":1}}`, string(seen.body))

	assert.Equal(t, `{"body":"<p>hi</p>"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.ContentType)
	assert.NotEmpty(t, resp.InvocationID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Invocations.WithLabelValues("POST", "success")))
}

func TestInvokeDefaultsEmptyEvent(t *testing.T) {
	var seen captured
	srv := newServer(t, http.StatusOK, `"<p/>"`, &seen)

	_, err := newInvoker(nil).Invoke(context.Background(), Request{BaseURL: srv.URL, FunctionID: "fn", Method: "put"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, seen.method)
	assert.JSONEq(t, `{"version":"","event":{}}`, string(seen.body))
}

func TestInvokeGetHasNoBody(t *testing.T) {
	var seen captured
	srv := newServer(t, http.StatusOK, `"<p/>"`, &seen)

	_, err := newInvoker(nil).Invoke(context.Background(), Request{
		BaseURL: srv.URL, FunctionID: "fn", Method: "GET", Event: json.RawMessage(`{"x":1}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, seen.method)
	assert.Empty(t, seen.body)
}

func TestInvokeHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		wantMsg string
	}{
		{"body is used", http.StatusNotFound, "no such function", "HTTP 404: no such function"},
		{"status text when body empty", http.StatusInternalServerError, "", "HTTP 500: Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen captured
			srv := newServer(t, tt.status, tt.reply, &seen)

			_, err := newInvoker(nil).Invoke(context.Background(), Request{BaseURL: srv.URL, FunctionID: "fn"})

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestInvokeValidation(t *testing.T) {
	inv := newInvoker(nil)

	_, err := inv.Invoke(context.Background(), Request{BaseURL: "http://x", FunctionID: "  "})
	assert.ErrorIs(t, err, scheme.ErrMissingFunctionID)

	_, err = inv.Invoke(context.Background(), Request{BaseURL: "http://x", FunctionID: "fn", Method: "TRACE"})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestInvokeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := newInvoker(nil).Invoke(context.Background(), Request{BaseURL: base, FunctionID: "fn"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/api/v1/functions/fn/invoke")

	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr))
}

func TestInvokeAppliesRewrite(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `"<p/>"`)
	}))
	defer srv.Close()

	inv := newInvoker(RewriteTable{"http://unreachable.invalid:4443": srv.URL})

	resp, err := inv.Invoke(context.Background(), Request{BaseURL: "http://unreachable.invalid:4443", FunctionID: "fn"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, srv.URL+"/api/v1/functions/fn/invoke", resp.URL)
}

func TestURLs(t *testing.T) {
	inv := newInvoker(DefaultRewriteTable())

	assert.Equal(t,
		"http://34.171.49.45:4443/api/v1/functions/abc/invoke",
		inv.DisplayURL("http://34.171.49.45:4443", "abc"))
	assert.Equal(t,
		"https://rival-internal.secretcult.network/api/v1/functions/abc/invoke",
		inv.FunctionURL("http://34.171.49.45:4443", "abc"))
	assert.Equal(t,
		"http://other:4443/api/v1/functions/abc/invoke",
		inv.FunctionURL("http://other:4443", "abc"))
}

func TestMixedContent(t *testing.T) {
	inv := newInvoker(DefaultRewriteTable())

	assert.True(t, inv.MixedContent("https", "http://other.example"))
	assert.False(t, inv.MixedContent("https", "http://34.171.49.45:4443"))
	assert.False(t, inv.MixedContent("https", "https://secure.example"))
	assert.False(t, inv.MixedContent("http", "http://other.example"))
}

func TestTrimBase(t *testing.T) {
	assert.Equal(t, "https://api.example.com", TrimBase(" https://api.example.com/ "))
	assert.Equal(t, "https://api.example.com/", TrimBase("https://api.example.com//"))
	assert.Equal(t, "", TrimBase(""))
}

func TestNormalizeMethod(t *testing.T) {
	for in, want := range map[string]string{"": "POST", "get": "GET", " patch ": "PATCH", "DELETE": "DELETE"} {
		got, err := NormalizeMethod(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
