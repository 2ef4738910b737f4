package middleware

import (
	"log/slog"
	"time"

	"github.com/xraph/flux"
)

// Logging returns middleware that logs every dispatched action.
// Lifecycle actions log at Info with their stage and transaction;
// plain actions log at Debug.
func Logging(logger *slog.Logger) flux.Middleware {
	return func(_ flux.API, next flux.DispatchFunc) flux.DispatchFunc {
		return func(a *flux.Action) any {
			if a == nil {
				return next(a)
			}

			start := time.Now()
			result := next(a)
			elapsed := time.Since(start)

			if stage := a.Stage(); stage != "" {
				logger.Info("action dispatched",
					slog.String("action_type", a.Type),
					slog.String("stage", string(stage)),
					slog.String("transaction", a.Meta.Transaction.String()),
					slog.Bool("error", a.Err),
					slog.Duration("elapsed", elapsed),
				)
			} else {
				logger.Debug("action dispatched",
					slog.String("action_type", a.Type),
					slog.Duration("elapsed", elapsed),
				)
			}

			return result
		}
	}
}
