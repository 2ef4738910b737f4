package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/flux"
)

// tracerName is the instrumentation scope name for flux tracing.
const tracerName = "github.com/xraph/flux"

// Tracing returns middleware that wraps each dispatch in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a
// pass-through with zero overhead.
//
// Span attributes include: flux.action.type, flux.lifecycle,
// flux.transaction, flux.error. Failure-stage actions set the span
// status to codes.Error.
func Tracing() flux.Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided
// tracer. This variant allows injecting a specific TracerProvider for
// testing or when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) flux.Middleware {
	return func(_ flux.API, next flux.DispatchFunc) flux.DispatchFunc {
		return func(a *flux.Action) any {
			if a == nil {
				return next(a)
			}

			_, span := tracer.Start(context.Background(), "flux.dispatch",
				trace.WithAttributes(
					attribute.String("flux.action.type", a.Type),
					attribute.String("flux.lifecycle", string(a.Stage())),
					attribute.String("flux.transaction", a.Meta.Transaction.String()),
					attribute.Bool("flux.error", a.Err),
				),
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			result := next(a)

			if a.Err {
				span.SetStatus(codes.Error, a.Type)
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return result
		}
	}
}
