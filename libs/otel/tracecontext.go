package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	traceparentKey = "traceparent"
	tracestateKey  = "tracestate"
)

// TraceLink is a detached copy of the W3C trace context of a request. Work
// queued past the end of the request keeps one so it can be published under
// the request's trace.
type TraceLink struct {
	Parent string
	State  string
}

// LinkFrom captures the trace context of ctx with the global propagator.
func LinkFrom(ctx context.Context) TraceLink {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return TraceLink{Parent: carrier[traceparentKey], State: carrier[tracestateKey]}
}

// IsZero reports whether no trace was active when the link was taken.
func (l TraceLink) IsZero() bool {
	return l.Parent == ""
}

// Attach returns ctx carrying the linked trace as its remote parent. A zero
// link returns ctx unchanged.
func (l TraceLink) Attach(ctx context.Context) context.Context {
	if l.IsZero() {
		return ctx
	}
	carrier := propagation.MapCarrier{traceparentKey: l.Parent}
	if l.State != "" {
		carrier[tracestateKey] = l.State
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
