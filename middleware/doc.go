// Package middleware provides composable middleware for store dispatch.
//
// A [flux.Middleware] is a function that wraps a dispatch function.
// Middleware are composed with [flux.Chain] (or the store's
// WithMiddleware option) and applied right-to-left: the first middleware
// in the list is the outermost wrapper.
//
//	// logging → lifecycle → reducer
//	store, err := flux.New(reducer, initial,
//	    flux.WithMiddleware[S](middleware.Logging(logger), middleware.Lifecycle()),
//	)
//
// # Built-in Middleware
//
//   - [Lifecycle] expands an action carrying a pending computation
//     into start/success/failure actions tagged with a transaction ID
//   - [Logging] logs action type, stage, transaction, and duration
//   - [Recover] catches panics in the chain below and logs them
//   - [Tracing] wraps each dispatch in an OpenTelemetry span
//   - [Metrics] records per-dispatch duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() flux.Middleware {
//	    return func(api flux.API, next flux.DispatchFunc) flux.DispatchFunc {
//	        return func(a *flux.Action) any {
//	            // pre-processing
//	            result := next(a)
//	            // post-processing
//	            return result
//	        }
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting, as Lifecycle does for actions it expands.
package middleware
