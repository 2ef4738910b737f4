package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/xraph/flux"
)

// Recover returns middleware that recovers from panics in the chain
// below it, such as a misconfigured handler table or a reducer bug, and logs
// them with a stack trace. The dispatch result is nil for a recovered
// panic.
//
// Place Recover outermost. Note that it also swallows the configuration
// panics flux.Handle raises on programming errors; install it in
// serving processes, not in tests meant to surface those.
func Recover(logger *slog.Logger) flux.Middleware {
	return func(_ flux.API, next flux.DispatchFunc) flux.DispatchFunc {
		return func(a *flux.Action) (result any) {
			defer func() {
				if r := recover(); r != nil {
					actionType := "<nil>"
					if a != nil {
						actionType = a.Type
					}
					logger.Error("dispatch panicked",
						slog.String("action_type", actionType),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					result = nil
				}
			}()
			return next(a)
		}
	}
}
