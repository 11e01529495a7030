/*
Package tracing provides lightweight request tracing.

# Overview

Each inbound HTTP request opens a span; the launcher opens child spans for
the remote invocation and normalization. Trace context travels in headers so
a function backend can correlate its own logs with the launcher's.

# Usage

	tracer := tracing.New("launcher", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "invoke")
	defer tracer.Submit(span)
	span.SetTag("function_id", functionID)

Outbound requests call InjectTraceContext to forward the current trace.

# Trace Format

- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

Spans are buffered (1000) and written to the log by a single collector
goroutine. A full buffer drops spans rather than blocking requests.
*/
package tracing
