package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/flux"
)

// meterName is the instrumentation scope name for flux metrics.
const meterName = "github.com/xraph/flux"

// Metrics returns middleware that records per-dispatch metrics using
// the global OTel MeterProvider. If no MeterProvider is configured,
// noop instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - flux.dispatch.duration (Float64Histogram): dispatch time in
//     seconds, with attributes: action_type, stage, status
//   - flux.dispatch.count (Int64Counter): total dispatches,
//     with attributes: action_type, stage, status
//
// status is "error" for failure-stage actions and "ok" otherwise.
func Metrics() flux.Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) flux.Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"flux.dispatch.duration",
		metric.WithDescription("Duration of action dispatch in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	count, cErr := meter.Int64Counter(
		"flux.dispatch.count",
		metric.WithDescription("Total number of dispatched actions"),
		metric.WithUnit("{dispatch}"),
	)
	_ = cErr // noop fallback guaranteed by OTel API contract

	return func(_ flux.API, next flux.DispatchFunc) flux.DispatchFunc {
		return func(a *flux.Action) any {
			if a == nil {
				return next(a)
			}

			start := time.Now()
			result := next(a)
			elapsed := time.Since(start).Seconds()

			status := "ok"
			if a.Err {
				status = "error"
			}

			attrs := metric.WithAttributes(
				attribute.String("action_type", a.Type),
				attribute.String("stage", string(a.Stage())),
				attribute.String("status", status),
			)

			ctx := context.Background()
			duration.Record(ctx, elapsed, attrs)
			count.Add(ctx, 1, attrs)

			return result
		}
	}
}
