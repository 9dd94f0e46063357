// Package middleware provides composable middleware around handler
// invocation.
//
// A [Middleware] is a function that wraps the resolved handler call.
// Middleware are composed into a chain using [Chain] and applied before
// each dispatch. They are applied right-to-left: the first middleware in
// the slice is the outermost wrapper.
//
//	// logging → recover → handler
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs request kind, service, method, duration, and outcome
//   - [Recover]: catches handler panics and converts them to errors
//   - [Tracing]: wraps invocation in an OpenTelemetry span
//   - [Metrics]: records per-dispatch duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, inv *middleware.Invocation, next middleware.Handler) (any, error) {
//	        // pre-processing
//	        result, err := next(ctx)
//	        // post-processing
//	        return result, err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting.
package middleware
