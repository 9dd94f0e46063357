package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for relay metrics.
const meterName = "github.com/xraph/relay"

// Metrics returns middleware that records per-dispatch metrics using the
// global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - relay.dispatch.duration (Float64Histogram): invocation time in
//     seconds, with attributes: kind, service, method, status ("ok" or "error")
//   - relay.dispatch.requests (Int64Counter): total dispatches,
//     with attributes: kind, service, method, status ("ok" or "error")
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"relay.dispatch.duration",
		metric.WithDescription("Duration of handler invocation in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	requests, rErr := meter.Int64Counter(
		"relay.dispatch.requests",
		metric.WithDescription("Total number of dispatched requests"),
		metric.WithUnit("{request}"),
	)
	_ = rErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
		start := time.Now()
		result, err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("kind", inv.Kind.String()),
			attribute.String("service", inv.Service),
			attribute.String("method", inv.Method),
			attribute.String("status", status),
		)

		duration.Record(ctx, elapsed, attrs)
		requests.Add(ctx, 1, attrs)

		return result, err
	}
}
