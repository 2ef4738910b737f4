package promise

import (
	"context"
	"fmt"
	"sync"
)

// Thenable is the minimal capability the lifecycle middleware requires of
// a pending computation: registering a pair of mutually exclusive
// continuations. Exactly one of the two callbacks fires, exactly once,
// when the computation settles.
//
// Then may be called any number of times; continuations registered after
// settlement fire immediately on the calling goroutine.
type Thenable interface {
	Then(onFulfilled func(value any), onRejected func(reason any))
}

// RejectionError wraps a rejection reason so it can travel as an error
// through Await.
type RejectionError struct {
	Reason any
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("promise: rejected: %v", e.Reason)
}

type state int

const (
	pending state = iota
	fulfilled
	rejected
)

type continuation struct {
	onFulfilled func(value any)
	onRejected  func(reason any)
}

// Future is a settable, awaitable Thenable. The zero value is not usable;
// create one with New, Resolved, Rejected, or Go.
//
// A Future settles at most once: the first Complete or Fail wins and all
// later settle calls are no-ops. Continuations registered before
// settlement run on the settling goroutine, in registration order.
type Future struct {
	mu    sync.Mutex
	done  chan struct{}
	state state
	value any
	conts []continuation
}

// Compile-time interface check.
var _ Thenable = (*Future)(nil)

// New creates a pending Future.
func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved creates a Future already fulfilled with value.
func Resolved(value any) *Future {
	f := New()
	f.Complete(value)
	return f
}

// Rejected creates a Future already rejected with reason.
func Rejected(reason any) *Future {
	f := New()
	f.Fail(reason)
	return f
}

// Go runs fn in a new goroutine and returns a Future that settles with
// its outcome: fulfilled with the returned value on a nil error,
// rejected with the error otherwise. A panic in fn rejects the Future
// with the panic value.
func Go(fn func() (any, error)) *Future {
	f := New()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.Fail(r)
			}
		}()

		v, err := fn()
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(v)
	}()
	return f
}

// Complete fulfills the Future with value. It reports whether this call
// settled it; false means the Future was already settled.
func (f *Future) Complete(value any) bool {
	return f.settle(fulfilled, value)
}

// Fail rejects the Future with reason. It reports whether this call
// settled it; false means the Future was already settled.
func (f *Future) Fail(reason any) bool {
	return f.settle(rejected, reason)
}

func (f *Future) settle(s state, v any) bool {
	f.mu.Lock()
	if f.state != pending {
		f.mu.Unlock()
		return false
	}
	f.state = s
	f.value = v
	conts := f.conts
	f.conts = nil
	close(f.done)
	f.mu.Unlock()

	for _, c := range conts {
		f.fire(c)
	}
	return true
}

// Then registers continuations. Exactly one of the two fires, once the
// Future settles. Either callback may be nil to ignore that outcome.
func (f *Future) Then(onFulfilled func(value any), onRejected func(reason any)) {
	c := continuation{onFulfilled: onFulfilled, onRejected: onRejected}

	f.mu.Lock()
	if f.state == pending {
		f.conts = append(f.conts, c)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	f.fire(c)
}

// fire invokes the continuation matching the settled state.
// Must be called only after settlement.
func (f *Future) fire(c continuation) {
	switch f.state {
	case fulfilled:
		if c.onFulfilled != nil {
			c.onFulfilled(f.value)
		}
	case rejected:
		if c.onRejected != nil {
			c.onRejected(f.value)
		}
	case pending:
		// Unreachable: fire is called only on settled futures.
	}
}

// Done returns a channel closed when the Future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx is canceled. A fulfilled
// Future yields (value, nil); a rejected one yields (nil, *RejectionError)
// carrying the reason.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == rejected {
		return nil, &RejectionError{Reason: f.value}
	}
	return f.value, nil
}
