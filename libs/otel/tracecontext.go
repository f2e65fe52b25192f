package otelx

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
)

// w3c is used directly for persisted trace context so rows written before
// Setup runs still carry a readable traceparent.
var w3c = propagation.TraceContext{}

// TraceContextStrings renders the span context in ctx as W3C header values,
// ready to be stored next to an outbox row.
func TraceContextStrings(ctx context.Context) (traceparent, tracestate string) {
	carrier := propagation.MapCarrier{}
	w3c.Inject(ctx, carrier)
	return carrier.Get("traceparent"), carrier.Get("tracestate")
}

// ContextWithTraceContext restores a remote span context saved by
// TraceContextStrings. Empty values leave ctx untouched.
func ContextWithTraceContext(ctx context.Context, traceparent, tracestate string) context.Context {
	if traceparent == "" {
		return ctx
	}
	carrier := propagation.MapCarrier{"traceparent": traceparent}
	if tracestate != "" {
		carrier.Set("tracestate", tracestate)
	}
	return w3c.Extract(ctx, carrier)
}
