package flux

import (
	"github.com/xraph/flux/id"
	"github.com/xraph/flux/promise"
)

// Stage marks which lifecycle stage of an asynchronous operation a
// derived action represents. The string values are the wire contract:
// consumers outside flux (loggers, analytics, test helpers) may build
// synthetic actions carrying them.
type Stage string

// Lifecycle stages stamped on derived actions.
const (
	StageStart   Stage = "start"
	StageSuccess Stage = "success"
	StageFailure Stage = "failure"
)

// GetState returns the store's current state synchronously. Hooks receive
// it so they can observe state without holding a store reference.
type GetState func() any

// Meta is the metadata record carried on every action. Caller-supplied
// fields (Extra and the hook slots) travel unmodified onto each derived
// action; the lifecycle middleware fills Lifecycle, Transaction, and
// StartPayload.
type Meta struct {
	// Lifecycle marks the stage of a derived action. Empty on actions
	// not produced by the lifecycle middleware.
	Lifecycle Stage

	// Transaction correlates the derived actions of one asynchronous
	// operation. Identical across that operation's start, success, and
	// failure actions.
	Transaction id.ID

	// StartPayload is the originating action's payload, echoed on
	// success and failure actions so handlers can recover what was
	// asked for.
	StartPayload any

	// Extra holds arbitrary caller data, carried through unmodified.
	Extra map[string]any

	// OnStart fires after the start action is dispatched, with the
	// originating payload.
	OnStart func(payload any, getState GetState)

	// OnSuccess fires after the success action is dispatched, with the
	// resolved value.
	OnSuccess func(data any, getState GetState)

	// OnFailure fires after the failure action is dispatched, with the
	// rejection reason.
	OnFailure func(reason any, getState GetState)

	// OnFinish fires after OnSuccess or OnFailure; ok reports which.
	OnFinish func(ok bool, getState GetState)
}

// Action is an immutable message describing an intended state change.
// Each lifecycle stage produces a fresh Action; nothing mutates one
// after construction.
type Action struct {
	// Type is the caller-chosen discriminator, stable across the whole
	// lifecycle of one logical operation.
	Type string

	// Payload is stage-dependent: the originating payload at start, the
	// resolved value at success, the rejection reason at failure.
	Payload any

	// Err is true only on failure actions.
	Err bool

	// Promise is the pending computation, present only on the
	// originating action. Derived actions never carry it.
	Promise promise.Thenable

	// Meta carries lifecycle markers, the transaction ID, and
	// caller-supplied hooks and data.
	Meta Meta
}

// Stage returns the lifecycle marker, empty for non-lifecycle actions.
func (a *Action) Stage() Stage { return a.Meta.Lifecycle }

// Result is the normalized terminal outcome of a tracked operation, the
// value the lifecycle middleware's returned Future settles with. A
// failed operation yields Err=true with the rejection reason as Payload;
// it is never surfaced as a raw rejection to awaiting callers.
type Result struct {
	Err     bool
	Payload any
}

// DispatchFunc sends an action toward the store, returning whatever the
// terminal dispatcher or an intervening middleware produces.
type DispatchFunc func(a *Action) any

// API is the store surface middleware sees: full-chain dispatch and
// synchronous state access.
type API interface {
	// Dispatch enqueues an action through the complete middleware chain.
	Dispatch(a *Action) any

	// GetState returns the current state synchronously.
	GetState() any
}

// Middleware wraps a DispatchFunc with cross-cutting logic. Middleware
// MUST call next to continue the chain unless intentionally
// short-circuiting.
type Middleware func(api API, next DispatchFunc) DispatchFunc

// Chain composes middleware around a terminal dispatch function.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(api, base, logging, lifecycle) executes as:
//
//	logging → lifecycle → base
func Chain(api API, base DispatchFunc, mws ...Middleware) DispatchFunc {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](api, d)
	}
	return d
}
