// Package flux represents an asynchronous operation as a single logical
// action dispatched to an event-driven store. One dispatch of an action
// carrying a pending computation expands into a lifecycle of derived
// actions, start then exactly one of success or failure, correlated
// by a generated transaction identifier.
//
// Flux is designed as a library, not a service. Two mechanisms cooperate
// and are consumed independently:
//
//   - The lifecycle middleware ([middleware.Lifecycle]) sits in the
//     dispatch path. It detects an Action whose Promise field is set,
//     synchronously dispatches the start variant, and dispatches the
//     terminal variant when the computation settles, firing optional
//     caller hooks at each transition.
//   - The lifecycle router ([Handle]) lets a reducer consume the tagged
//     actions through a small declarative table instead of a manual
//     conditional.
//
// # Quick Start
//
//	type users struct {
//	    Loading bool
//	    Data    any
//	}
//
//	reducer := func(s users, a *flux.Action) users {
//	    switch a.Type {
//	    case "users/load":
//	        return flux.Handle(s, a, flux.Steps[users]{
//	            flux.StepStart:   func(s users, _ *flux.Action) users { s.Loading = true; return s },
//	            flux.StepSuccess: func(s users, a *flux.Action) users { s.Data = a.Payload; return s },
//	            flux.StepFinish:  func(s users, _ *flux.Action) users { s.Loading = false; return s },
//	        })
//	    }
//	    return s
//	}
//
//	store, err := flux.New(reducer, users{},
//	    flux.WithMiddleware[users](middleware.Lifecycle()),
//	)
//
//	result := store.Dispatch(&flux.Action{
//	    Type:    "users/load",
//	    Promise: promise.Go(func() (any, error) { return fetchUsers(ctx) }),
//	})
//
// The dispatch returns a [promise.Future] that settles with the
// normalized terminal outcome ([Result]), so callers can await the
// operation without ever observing a raw rejection.
//
// All transaction identifiers use TypeID: type-prefixed, K-sortable,
// UUIDv7-based identifiers.
package flux
