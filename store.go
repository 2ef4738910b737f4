package flux

import (
	"log/slog"
	"sync"
)

// Reducer computes the next state from the current state and an action.
// Reducers must be pure: no side effects, no dispatching.
type Reducer[S any] func(state S, a *Action) S

// Option configures a Store.
type Option[S any] func(*Store[S]) error

// subscription pairs a callback with its registration handle.
type subscription struct {
	id int
	fn func()
}

// Store is a mutable state container updated only through serialized,
// named actions. Dispatches run the configured middleware chain; the
// terminal dispatcher applies the reducer under a mutex, so the host
// processes one state transition to completion before starting the next
// even when asynchronous settlements dispatch from other goroutines.
type Store[S any] struct {
	mu      sync.Mutex
	state   S
	reducer Reducer[S]

	// dispatch is the fully composed chain; set once in New.
	dispatch DispatchFunc

	// mws accumulates middleware during option processing.
	mws []Middleware

	subMu   sync.Mutex
	subs    []subscription
	nextSub int

	logger *slog.Logger
}

// Compile-time interface check.
var _ API = (*Store[int])(nil)

// New creates a Store with the given reducer and initial state.
func New[S any](reducer Reducer[S], initial S, opts ...Option[S]) (*Store[S], error) {
	if reducer == nil {
		return nil, ErrNilReducer
	}

	s := &Store[S]{
		state:   initial,
		reducer: reducer,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.dispatch = Chain(s, s.apply, s.mws...)
	s.mws = nil

	return s, nil
}

// WithMiddleware installs middleware on the store. Middleware are
// applied in the order given: the first is the outermost wrapper.
// Options are processed in order, so multiple WithMiddleware calls
// concatenate.
func WithMiddleware[S any](mws ...Middleware) Option[S] {
	return func(s *Store[S]) error {
		for _, mw := range mws {
			if mw == nil {
				return ErrNilMiddleware
			}
		}
		s.mws = append(s.mws, mws...)
		return nil
	}
}

// WithLogger sets the structured logger for the store.
func WithLogger[S any](l *slog.Logger) Option[S] {
	return func(s *Store[S]) error {
		s.logger = l
		return nil
	}
}

// Dispatch sends an action through the middleware chain. The result is
// whatever the chain produces: the action itself from the terminal
// dispatcher, or a middleware-supplied value such as the lifecycle
// middleware's Future.
func (s *Store[S]) Dispatch(a *Action) any {
	return s.dispatch(a)
}

// apply is the terminal dispatcher: reduce under the mutex, then notify
// subscribers. It returns the action, the conventional result of an
// unintercepted dispatch.
func (s *Store[S]) apply(a *Action) any {
	s.mu.Lock()
	s.state = s.reducer(s.state, a)
	s.mu.Unlock()

	s.notify()
	return a
}

// GetState returns the current state. It satisfies API; typed callers
// prefer State.
func (s *Store[S]) GetState() any {
	return s.State()
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every completed dispatch, in
// registration order. The returned function removes the subscription;
// calling it more than once is harmless.
func (s *Store[S]) Subscribe(fn func()) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// ReplaceReducer swaps the reducer. Subsequent dispatches use the new
// one; in-flight dispatches are unaffected.
func (s *Store[S]) ReplaceReducer(r Reducer[S]) {
	if r == nil {
		panic("flux: ReplaceReducer called with nil reducer")
	}
	s.mu.Lock()
	s.reducer = r
	s.mu.Unlock()
}

// Logger returns the store's logger.
func (s *Store[S]) Logger() *slog.Logger { return s.logger }

// notify runs subscribers outside the state lock so a subscriber may
// itself dispatch.
func (s *Store[S]) notify() {
	s.subMu.Lock()
	fns := make([]func(), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
