package flux_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/flux"
	"github.com/xraph/flux/middleware"
	"github.com/xraph/flux/promise"
)

func counter(s int, a *flux.Action) int {
	switch a.Type {
	case "inc":
		return s + 1
	case "add":
		return s + a.Payload.(int)
	}
	return s
}

func TestNew_NilReducer(t *testing.T) {
	if _, err := flux.New[int](nil, 0); !errors.Is(err, flux.ErrNilReducer) {
		t.Fatalf("expected ErrNilReducer, got %v", err)
	}
}

func TestNew_NilMiddleware(t *testing.T) {
	_, err := flux.New(counter, 0, flux.WithMiddleware[int](nil))
	if !errors.Is(err, flux.ErrNilMiddleware) {
		t.Fatalf("expected ErrNilMiddleware, got %v", err)
	}
}

func TestDispatch_AppliesReducer(t *testing.T) {
	store, err := flux.New(counter, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := &flux.Action{Type: "inc"}
	if got := store.Dispatch(a); got != any(a) {
		t.Errorf("terminal dispatch returned %v, want the action", got)
	}
	store.Dispatch(&flux.Action{Type: "add", Payload: 10})

	if got := store.State(); got != 11 {
		t.Errorf("state = %d, want 11", got)
	}
	if got := store.GetState(); got != any(11) {
		t.Errorf("GetState() = %v, want 11", got)
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) flux.Middleware {
		return func(_ flux.API, next flux.DispatchFunc) flux.DispatchFunc {
			return func(a *flux.Action) any {
				order = append(order, name+"-before")
				result := next(a)
				order = append(order, name+"-after")
				return result
			}
		}
	}

	store, err := flux.New(counter, 0, flux.WithMiddleware[int](tag("outer"), tag("inner")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Dispatch(&flux.Action{Type: "inc"})

	want := []string{"outer-before", "inner-before", "inner-after", "outer-after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSubscribe(t *testing.T) {
	store, err := flux.New(counter, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := 0
	unsub := store.Subscribe(func() { calls++ })

	store.Dispatch(&flux.Action{Type: "inc"})
	store.Dispatch(&flux.Action{Type: "inc"})
	if calls != 2 {
		t.Errorf("subscriber called %d times, want 2", calls)
	}

	unsub()
	unsub() // second call is harmless

	store.Dispatch(&flux.Action{Type: "inc"})
	if calls != 2 {
		t.Errorf("subscriber called after unsubscribe: %d", calls)
	}
}

func TestSubscriber_SeesUpdatedState(t *testing.T) {
	store, err := flux.New(counter, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var seen int
	store.Subscribe(func() { seen = store.State() })

	store.Dispatch(&flux.Action{Type: "inc"})
	if seen != 1 {
		t.Errorf("subscriber saw %d, want 1", seen)
	}
}

func TestReplaceReducer(t *testing.T) {
	store, err := flux.New(counter, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Dispatch(&flux.Action{Type: "inc"})
	store.ReplaceReducer(func(s int, _ *flux.Action) int { return s + 100 })
	store.Dispatch(&flux.Action{Type: "inc"})

	if got := store.State(); got != 101 {
		t.Errorf("state = %d, want 101", got)
	}
}

// TestStore_LifecycleEndToEnd exercises the full pairing: the lifecycle
// middleware expands an async action and the reducer consumes the
// lifecycle actions through Handle.
func TestStore_LifecycleEndToEnd(t *testing.T) {
	type users struct {
		Loading bool
		Data    any
		Error   any
	}

	reducer := func(s users, a *flux.Action) users {
		if a.Type != "users/load" {
			return s
		}
		return flux.Handle(s, a, flux.Steps[users]{
			flux.StepStart: func(s users, _ *flux.Action) users {
				s.Loading = true
				return s
			},
			flux.StepSuccess: func(s users, a *flux.Action) users {
				s.Data = a.Payload
				return s
			},
			flux.StepFailure: func(s users, a *flux.Action) users {
				s.Error = a.Payload
				return s
			},
			flux.StepFinish: func(s users, _ *flux.Action) users {
				s.Loading = false
				return s
			},
		})
	}

	store, err := flux.New(reducer, users{},
		flux.WithMiddleware[users](middleware.Lifecycle()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := promise.New()
	result := store.Dispatch(&flux.Action{Type: "users/load", Promise: f})

	// Start effects are visible before Dispatch returned.
	if got := store.State(); !got.Loading {
		t.Error("state after dispatch should be loading")
	}

	f.Complete([]string{"ada", "grace"})

	handle := result.(*promise.Future)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := handle.Await(ctx); err != nil {
		t.Fatalf("await: %v", err)
	}

	got := store.State()
	if got.Loading {
		t.Error("loading not cleared after settlement")
	}
	if data, ok := got.Data.([]string); !ok || len(data) != 2 {
		t.Errorf("data = %v, want [ada grace]", got.Data)
	}
	if got.Error != nil {
		t.Errorf("unexpected error state: %v", got.Error)
	}
}

func TestStore_LifecycleFailureEndToEnd(t *testing.T) {
	type users struct {
		Loading bool
		Error   any
	}

	reducer := func(s users, a *flux.Action) users {
		return flux.Handle(s, a, flux.Steps[users]{
			flux.StepStart: func(s users, _ *flux.Action) users {
				s.Loading = true
				return s
			},
			flux.StepFailure: func(s users, a *flux.Action) users {
				s.Error = a.Payload
				return s
			},
			flux.StepFinish: func(s users, _ *flux.Action) users {
				s.Loading = false
				return s
			},
		})
	}

	store, err := flux.New(reducer, users{},
		flux.WithMiddleware[users](middleware.Lifecycle()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := promise.New()
	store.Dispatch(&flux.Action{Type: "users/load", Promise: f})
	f.Fail("network error")

	got := store.State()
	if got.Loading {
		t.Error("loading not cleared after failure")
	}
	if got.Error != "network error" {
		t.Errorf("error = %v, want network error", got.Error)
	}
}
