package middleware

import (
	"log/slog"

	"github.com/xraph/flux"
	"github.com/xraph/flux/id"
	"github.com/xraph/flux/promise"
)

// lifecycleConfig holds the injected capabilities of the lifecycle
// middleware.
type lifecycleConfig struct {
	gen    id.Generator
	logger *slog.Logger
}

// LifecycleOption configures the Lifecycle middleware.
type LifecycleOption func(*lifecycleConfig)

// WithGenerator sets the transaction ID generator. Tests substitute a
// deterministic sequence here.
func WithGenerator(g id.Generator) LifecycleOption {
	return func(c *lifecycleConfig) { c.gen = g }
}

// WithLogger sets the logger used for isolated hook failures.
func WithLogger(l *slog.Logger) LifecycleOption {
	return func(c *lifecycleConfig) { c.logger = l }
}

// Lifecycle returns middleware that expands an action carrying a pending
// computation into its lifecycle actions.
//
// A nil action is a no-op returning nil, supporting conditional
// action-creator patterns. An action without a Promise passes to next
// unchanged. Otherwise the middleware:
//
//   - generates a fresh transaction ID,
//   - dispatches the start action synchronously, before returning, so
//     callers relying on store state immediately after dispatch see its
//     effects,
//   - fires the OnStart hook,
//   - registers continuations that dispatch exactly one of the success
//     or failure actions when the computation settles, fire the matching
//     hook and then OnFinish, and settle the returned handle.
//
// The dispatch result is a *promise.Future that completes with the
// normalized flux.Result, for failures too, so awaiting callers never
// see a raw rejection.
//
// Hooks are caller instrumentation: a panic inside one is caught and
// logged, never propagated into the dispatch flow.
func Lifecycle(opts ...LifecycleOption) flux.Middleware {
	cfg := lifecycleConfig{
		gen:    id.NewTransactionID,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(api flux.API, next flux.DispatchFunc) flux.DispatchFunc {
		return func(a *flux.Action) any {
			if a == nil {
				return nil
			}
			if a.Promise == nil {
				return next(a)
			}

			txn := cfg.gen()

			start := derive(a, flux.StageStart, txn)
			start.Payload = a.Payload
			api.Dispatch(start)

			if a.Meta.OnStart != nil {
				cfg.invoke("onStart", a.Type, txn, func() {
					a.Meta.OnStart(a.Payload, api.GetState)
				})
			}

			handle := promise.New()
			a.Promise.Then(
				func(data any) {
					success := derive(a, flux.StageSuccess, txn)
					success.Payload = data
					success.Meta.StartPayload = a.Payload
					api.Dispatch(success)

					if a.Meta.OnSuccess != nil {
						cfg.invoke("onSuccess", a.Type, txn, func() {
							a.Meta.OnSuccess(data, api.GetState)
						})
					}
					if a.Meta.OnFinish != nil {
						cfg.invoke("onFinish", a.Type, txn, func() {
							a.Meta.OnFinish(true, api.GetState)
						})
					}

					handle.Complete(flux.Result{Payload: data})
				},
				func(reason any) {
					failure := derive(a, flux.StageFailure, txn)
					failure.Payload = reason
					failure.Err = true
					failure.Meta.StartPayload = a.Payload
					api.Dispatch(failure)

					if a.Meta.OnFailure != nil {
						cfg.invoke("onFailure", a.Type, txn, func() {
							a.Meta.OnFailure(reason, api.GetState)
						})
					}
					if a.Meta.OnFinish != nil {
						cfg.invoke("onFinish", a.Type, txn, func() {
							a.Meta.OnFinish(false, api.GetState)
						})
					}

					handle.Complete(flux.Result{Err: true, Payload: reason})
				},
			)

			return handle
		}
	}
}

// derive builds a lifecycle action from the originating one: same type,
// caller meta carried through, lifecycle marker and transaction stamped,
// no promise.
func derive(a *flux.Action, stage flux.Stage, txn id.ID) *flux.Action {
	meta := a.Meta
	meta.Lifecycle = stage
	meta.Transaction = txn

	return &flux.Action{
		Type: a.Type,
		Meta: meta,
	}
}

// invoke runs a caller-supplied hook, recovering and logging any panic
// so an instrumentation bug never corrupts the dispatch flow. All hook
// invocations go through here.
func (c *lifecycleConfig) invoke(hook, actionType string, txn id.ID, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("lifecycle hook panicked",
				slog.String("hook", hook),
				slog.String("action_type", actionType),
				slog.String("transaction", txn.String()),
				slog.Any("panic", r),
			)
		}
	}()
	fn()
}
